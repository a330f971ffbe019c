package statusutil

import (
	"fmt"
	"strings"

	"taskboard/internal/model"
)

// Parse accepts the persisted labels ("In Progress") as well as CLI-friendly
// spellings ("in-progress", "doing", "done").
func Parse(s string) (model.Status, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("invalid status: empty")
	}
	st, ok := model.ParseStatus(s)
	if !ok {
		return "", fmt.Errorf("invalid status: %q (expected open|in-progress|closed)", s)
	}
	return st, nil
}

// IsEndState reports whether status finishes a task.
func IsEndState(st model.Status) bool {
	return st == model.StatusClosed
}

// Slug is the lower-case, dash-separated key used for board columns in
// machine-readable output.
func Slug(st model.Status) string {
	return strings.ReplaceAll(strings.ToLower(string(st)), " ", "-")
}
