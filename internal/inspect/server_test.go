package inspect

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/gamewire/internal/config"
	"github.com/danmuck/gamewire/internal/protocol/frame"
	"github.com/danmuck/gamewire/internal/protocol/message"
	"github.com/danmuck/gamewire/internal/protocol/messages"
	"github.com/danmuck/gamewire/internal/testutil/testlog"
)

func newTestServer(t *testing.T) (*Server, *message.Codec) {
	t.Helper()
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	codec := message.NewCodec(messages.Registry(), message.DefaultOptions())
	return New(config.DefaultConfig().Inspect, codec), codec
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func envelopeHex(t *testing.T, codec *message.Codec, msg message.Encodable) string {
	t.Helper()
	env, err := codec.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := frame.Marshal(env, codec.FrameLimits())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return hex.EncodeToString(raw)
}

func TestHealthAndOpcodes(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health status=%d", rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/opcodes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("opcodes status=%d", rec.Code)
	}
	var body struct {
		Opcodes []OpcodeInfo `json:"opcodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Opcodes) != messages.Registry().Len() || body.Opcodes[0].Name != "CMSG_PING" {
		t.Fatalf("unexpected opcodes: %+v", body.Opcodes)
	}
}

func TestDecodeEnvelopeHex(t *testing.T) {
	s, codec := newTestServer(t)
	payload := `{"envelope":"` + envelopeHex(t, codec, &messages.Ping{Serial: 5, Latency: 30}) + `"}`
	rec := do(t, s, http.MethodPost, "/decode", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Name     string        `json:"name"`
		Consumed int           `json:"consumed"`
		Message  messages.Ping `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out.Name != "CMSG_PING" || out.Consumed != frame.HeaderLen+8 || out.Message.Latency != 30 {
		t.Fatalf("unexpected response: %+v", out)
	}

	metrics := do(t, s, http.MethodGet, "/metrics", "")
	series := `gamewire_http_decode_requests_total{kind="none",opcode="CMSG_PING",service="inspect"}`
	if !strings.Contains(metrics.Body.String(), series) {
		t.Fatalf("decode request not counted by opcode")
	}
}

func TestDecodeParts(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/decode", `{"opcode":34,"channel":"instance","payload":"0300000007000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ClientTime":7`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDecodeErrorStatuses(t *testing.T) {
	s, _ := newTestServer(t)
	cases := []struct {
		body string
		want int
	}{
		{`{"opcode":48879,"payload":""}`, http.StatusNotFound},
		{`{"opcode":1,"payload":"0102"}`, http.StatusBadRequest},
		{`{"envelope":"zz"}`, http.StatusBadRequest},
		{`{"envelope":"0100000000"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := do(t, s, http.MethodPost, "/decode", tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: status=%d want %d body=%s", tc.body, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestParseHex(t *testing.T) {
	b, err := ParseHex("0x01 02\n0a")
	if err != nil || len(b) != 3 || b[2] != 0x0a {
		t.Fatalf("got %x err=%v", b, err)
	}
}
