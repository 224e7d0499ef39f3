package repository

import (
	"time"

	"todopop/pkg/db/cursor"
)

func decodeCursor(token string) (time.Time, int, error) {
	datetimeStr, id, err := cursor.Decode(token)

	if err != nil {
		return time.Time{}, 0, err
	}

	datetime, err := time.Parse(time.RFC3339Nano, datetimeStr)

	if err != nil {
		return time.Time{}, 0, err
	}

	return datetime, id, nil
}
