// Package ipc carries the JSON command protocol between the CLI and the
// daemon, one request/response pair per Unix socket connection.
package ipc

import (
	"github.com/halvard/notedown/internal/app"
	"github.com/halvard/notedown/pkg/api"
)

// Message is a command payload sent from CLI to daemon.
type Message struct {
	Name      string   `json:"name"`
	ID        int64    `json:"id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Body      string   `json:"body,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Query     string   `json:"query,omitempty"`
	Regex     bool     `json:"regex,omitempty"`
	TagsAny   []string `json:"tags_any,omitempty"`
	TagsAll   []string `json:"tags_all,omitempty"`
	Since     string   `json:"since,omitempty"`
	Until     string   `json:"until,omitempty"`
	Sort      string   `json:"sort,omitempty"`
	Reverse   bool     `json:"reverse,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
	IfVersion int64    `json:"if_version,omitempty"`
}

// Response is a daemon reply.
type Response struct {
	OK     bool        `json:"ok"`
	Msg    string      `json:"msg,omitempty"`
	HTML   string      `json:"html,omitempty"`
	Note   *api.Note   `json:"note,omitempty"`
	Notes  []api.Note  `json:"notes,omitempty"`
	Page   *api.Page   `json:"page,omitempty"`
	Status *app.Status `json:"status,omitempty"`
}

// Fail builds an error reply.
func Fail(msg string) Response { return Response{OK: false, Msg: msg} }

// FailErr builds an error reply from err.
func FailErr(err error) Response { return Response{OK: false, Msg: err.Error()} }
