// ws_smoke registers a throwaway account against a running server, opens
// the event stream and checks that a created list is pushed back.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"tasklists/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port
	api := "http://" + base + "/api/v1"

	email := "smoke-" + uuid.NewString()[:8] + "@example.com"
	var reg struct {
		Token string `json:"token"`
	}
	if code, err := postJSON(api+"/auth/register", "", map[string]string{"email": email, "password": "smoke-pass"}, &reg); err != nil || code != http.StatusCreated {
		logger.Fatal("register", "status", code, "error", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/api/v1/ws?token="+reg.Token, nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	defer conn.Close()

	if typ := readType(conn, 2*time.Second); typ != "ready" {
		logger.Fatal("expected ready", "got", typ)
	}

	var list struct {
		ID int64 `json:"id"`
	}
	if code, err := postJSON(api+"/lists", reg.Token, map[string]string{"name": "smoke"}, &list); err != nil || code != http.StatusCreated {
		logger.Fatal("create list", "status", code, "error", err)
	}

	if typ := readType(conn, 3*time.Second); typ != "list_created" {
		logger.Fatal("expected list_created", "got", typ)
	}

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/lists/%d", api, list.ID), nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	if res, err := http.DefaultClient.Do(req); err == nil {
		res.Body.Close()
	}

	logger.Info("smoke test finished", "email", email, "list_id", list.ID)
}

func postJSON(url, token string, body, out any) (int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	return res.StatusCode, json.NewDecoder(res.Body).Decode(out)
}

func readType(conn *websocket.Conn, tmo time.Duration) string {
	_ = conn.SetReadDeadline(time.Now().Add(tmo))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		logger.Error("read", "error", err)
		return ""
	}
	var obj struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(msg, &obj)
	return obj.Type
}
