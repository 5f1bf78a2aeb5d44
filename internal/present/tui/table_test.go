package tui

import (
	"context"
	"testing"
	"time"

	"github.com/halvard/notedown/pkg/api"
)

func testModel(notes []api.Note) model {
	m := model{ctx: context.Background(), notes: notes, showIdx: -1, headers: true}
	m.initTable()
	return m
}

func TestUpdateRowsMirrorsNotes(t *testing.T) {
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	m := testModel([]api.Note{
		{ID: 7, Title: "seven", Tags: []string{"x", "y"}, UpdatedAt: at},
	})
	rows := m.table.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0][0] != "7" || rows[0][1] != "seven" || rows[0][2] != "x, y" {
		t.Fatalf("row=%v", rows[0])
	}
}

func TestDeleteResultRemovesRowAndClampsCursor(t *testing.T) {
	m := testModel([]api.Note{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})
	m.table.SetCursor(1)

	next, _ := m.Update(deleteResultMsg{idx: 1, id: 2})
	nm := next.(model)
	if len(nm.notes) != 1 {
		t.Fatalf("notes=%d", len(nm.notes))
	}
	if nm.table.Cursor() != 0 {
		t.Fatalf("cursor=%d", nm.table.Cursor())
	}
}

func TestDeleteResultErrorKeepsRows(t *testing.T) {
	m := testModel([]api.Note{{ID: 1, Title: "a"}})
	next, _ := m.Update(deleteResultMsg{idx: 0, id: 1, err: context.Canceled})
	nm := next.(model)
	if len(nm.notes) != 1 {
		t.Fatalf("notes=%d", len(nm.notes))
	}
	if nm.status == "" {
		t.Fatal("expected failure status")
	}
}
