package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend_Success(t *testing.T) {
	var gotPath, gotChatID, gotText, gotPreview string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Fatalf("bad form: %v", err)
		}
		gotChatID = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		gotPreview = r.PostFormValue("disable_web_page_preview")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	n := NewTelegram("tok123", "-100987", true)
	n.BaseURL = ts.URL

	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if gotPath != "/bottok123/sendMessage" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotChatID != "-100987" || gotText != "hello" || gotPreview != "true" {
		t.Fatalf("unexpected form: chat_id=%s text=%s preview=%s", gotChatID, gotText, gotPreview)
	}
}

func TestSend_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer ts.Close()

	n := NewTelegram("bad", "-1", false)
	n.BaseURL = ts.URL

	err := n.Send(context.Background(), "hello")
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if deliveryErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", deliveryErr.Status)
	}
	if deliveryErr.Body == "" {
		t.Fatal("expected response body in error")
	}
}

func TestSend_Unreachable(t *testing.T) {
	n := NewTelegram("tok", "-1", false)
	n.BaseURL = "http://127.0.0.1:1" // nothing listens here

	err := n.Send(context.Background(), "hello")
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if deliveryErr.Status != 0 {
		t.Fatalf("expected status 0 for transport failure, got %d", deliveryErr.Status)
	}
}

func TestSend_MissingCredentials(t *testing.T) {
	n := NewTelegram("", "", false)

	err := n.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	var deliveryErr *DeliveryError
	if errors.As(err, &deliveryErr) {
		t.Fatal("missing credentials is a config error, not a delivery error")
	}
}
