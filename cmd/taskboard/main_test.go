package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectTaskLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"taskboard"},
			want: []string{"taskboard"},
		},
		{
			name: "direct task id first token",
			in:   []string{"taskboard", "task-abc123"},
			want: []string{"taskboard", "tasks", "show", "task-abc123"},
		},
		{
			name: "direct sub-task id",
			in:   []string{"taskboard", "sub-xyz"},
			want: []string{"taskboard", "tasks", "show", "sub-xyz"},
		},
		{
			name: "uppercase imported task id",
			in:   []string{"taskboard", "TASK-1"},
			want: []string{"taskboard", "tasks", "show", "TASK-1"},
		},
		{
			name: "uppercase sub-task id after flag",
			in:   []string{"taskboard", "--pretty", "SUB-1"},
			want: []string{"taskboard", "--pretty", "tasks", "show", "SUB-1"},
		},
		{
			name: "after value flag",
			in:   []string{"taskboard", "--dir", "./tmp-board", "task-abc123"},
			want: []string{"taskboard", "--dir", "./tmp-board", "tasks", "show", "task-abc123"},
		},
		{
			name: "after equals flag",
			in:   []string{"taskboard", "--format=text", "task-abc123"},
			want: []string{"taskboard", "--format=text", "tasks", "show", "task-abc123"},
		},
		{
			name: "after bool flag",
			in:   []string{"taskboard", "--pretty", "task-abc123"},
			want: []string{"taskboard", "--pretty", "tasks", "show", "task-abc123"},
		},
		{
			name: "after double dash",
			in:   []string{"taskboard", "--dir", "./tmp-board", "--", "task-abc123"},
			want: []string{"taskboard", "--dir", "./tmp-board", "--", "tasks", "show", "task-abc123"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"taskboard", "tasks", "show", "task-abc123"},
			want: []string{"taskboard", "tasks", "show", "task-abc123"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"taskboard", "wat"},
			want: []string{"taskboard", "wat"},
		},
		{
			name: "bare prefix is not an id",
			in:   []string{"taskboard", "task-"},
			want: []string{"taskboard", "task-"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectTaskLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
