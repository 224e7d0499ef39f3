package request

// AddTodoRequest is the argument record of the todos.add function call. The
// text must be a non-empty string; everything else about it is unconstrained.
type AddTodoRequest struct {
	Text string `json:"text" validate:"required"`
}

// TargetTodoRequest is the argument record shared by todos.toggle and
// todos.remove.
type TargetTodoRequest struct {
	ID string `json:"id" validate:"required,uuid4"`
}
