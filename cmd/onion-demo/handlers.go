package main

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/onion/core/binder"
	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/multipart"
	"github.com/dmitrymomot/onion/core/response"
	"github.com/dmitrymomot/onion/middleware"
)

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>onion demo</title></head>
<body>
<h1>Hello{{if .Name}}, {{.Name}}{{end}}</h1>
<p>You have visited this page {{.Count}} time{{if ne .Count 1}}s{{end}}.</p>
<p>Request ID: <code>{{.RequestID}}</code></p>
</body>
</html>`))

func home(ctx *Context) handler.Response {
	sess := ctx.Session()
	visit := sess.Data
	visit.Count++
	sess.SetData(visit)
	ctx.SaveSession(sess)

	id, _ := middleware.GetRequestID(ctx)
	return response.Template(homeTemplate, map[string]any{
		"Name":      visit.Name,
		"Count":     visit.Count,
		"RequestID": id,
	})
}

type helloRequest struct {
	Name     string `path:"name" query:"-"`
	Greeting string `path:"-" query:"greeting"`
	Shout    bool   `path:"-" query:"shout"`
}

func hello(ctx *Context) handler.Response {
	req := helloRequest{Name: "world", Greeting: "hello"}
	if err := binder.Bind(ctx, &req, binder.Path(), binder.Query()); err != nil {
		return response.Error(err)
	}

	msg := req.Greeting + " " + req.Name
	if req.Shout {
		msg = strings.ToUpper(msg)
	}
	return response.JSON(map[string]string{"message": msg})
}

type nameRequest struct {
	Name string `form:"name" json:"name"`
}

// rename stores a display name in the session. It accepts an urlencoded
// or multipart form with a "name" field.
func rename(ctx *Context) handler.Response {
	var req nameRequest
	if err := binder.Bind(ctx, &req, binder.Form()); err != nil {
		return response.Error(err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return response.Error(response.ErrUnprocessableEntity.WithDetails(map[string]any{
			"name": "required",
		}))
	}

	sess := ctx.Session()
	visit := sess.Data
	visit.Name = name
	sess.SetData(visit)
	ctx.SaveSession(sess)

	return response.JSON(nameRequest{Name: name})
}

type uploadedFile struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func upload(ctx *Context) handler.Response {
	body, err := multipart.ParseRequest(ctx.Request(), 0)
	if err != nil {
		return response.Error(err)
	}

	files := make([]uploadedFile, 0)
	for _, name := range body.FileNames() {
		for _, f := range body.FileAll(name) {
			files = append(files, uploadedFile{
				Field:       f.Field,
				Filename:    f.Filename,
				ContentType: f.ContentType,
				Size:        f.Size(),
			})
		}
	}

	return response.JSONWithStatus(map[string]any{
		"fields": body.Values(),
		"files":  files,
	}, http.StatusCreated)
}

func visits(ctx *Context) handler.Response {
	sess := ctx.Session()
	return response.JSON(map[string]any{
		"session_id":    sess.ID,
		"authenticated": sess.IsAuthenticated(),
		"visit":         sess.Data,
		"expires_at":    sess.ExpiresAt,
	})
}

// clock streams the server time every second until the client leaves.
func clock(ctx *Context) handler.Response {
	events := make(chan any)
	go func() {
		defer close(events)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				select {
				case events <- map[string]string{"time": now.UTC().Format(time.RFC3339)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return response.SSE(events, response.WithEventName("tick"))
}

func echo(*Context) handler.Response {
	return response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return nil
			}
			if err := conn.WriteMessage(mt, []byte(strings.ToUpper(string(msg)))); err != nil {
				return err
			}
		}
	})
}
