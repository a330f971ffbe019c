package mutate

import (
	"fmt"
	"net/url"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

func validateLinks(links []model.Link) ([]model.Link, error) {
	out := make([]model.Link, 0, len(links))
	for _, l := range links {
		l, err := validateLink(l)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func validateLink(l model.Link) (model.Link, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.URL = strings.TrimSpace(l.URL)
	if l.Name == "" {
		return l, ValidationError{Field: "link name", Reason: "required"}
	}
	if l.URL == "" {
		return l, ValidationError{Field: "link url", Reason: "required"}
	}
	if u, err := url.Parse(l.URL); err != nil || u.Scheme == "" {
		return l, ValidationError{Field: "link url", Reason: fmt.Sprintf("not an absolute URL: %q", l.URL)}
	}
	return l, nil
}

func AddLink(b *store.Board, taskID string, l model.Link) (TaskResult, error) {
	l, err := validateLink(l)
	if err != nil {
		return TaskResult{}, err
	}
	t, err := findTask(b, strings.TrimSpace(taskID))
	if err != nil {
		return TaskResult{}, err
	}
	t.Links = append(t.Links, l)
	return TaskResult{
		Task:         t,
		Changed:      true,
		EventPayload: map[string]any{"name": l.Name, "url": l.URL},
	}, nil
}

// RemoveLink drops the link at index (0-based, in display order).
func RemoveLink(b *store.Board, taskID string, index int) (TaskResult, error) {
	t, err := findTask(b, strings.TrimSpace(taskID))
	if err != nil {
		return TaskResult{}, err
	}
	if index < 0 || index >= len(t.Links) {
		return TaskResult{}, NotFoundError{Kind: "link", ID: fmt.Sprintf("%s#%d", t.ID, index)}
	}
	removed := t.Links[index]
	t.Links = append(t.Links[:index:index], t.Links[index+1:]...)
	return TaskResult{
		Task:         t,
		Changed:      true,
		EventPayload: map[string]any{"removed": removed.URL, "index": index},
	}, nil
}
