package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"traintracker/pkg/sensor"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	kinds      []string
	messages   []published
	declareErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name)
	f.kinds = append(f.kinds, kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.messages = append(f.messages, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRoutingKey(t *testing.T) {
	tests := map[string]string{
		"Hamburg Hbf":          "sensor.hamburg_hbf",
		" Frankfurt(Main)Hbf ": "sensor.frankfurt(main)hbf",
		"St. Pauli":            "sensor.st__pauli",
	}
	for in, want := range tests {
		if got := RoutingKey(in); got != want {
			t.Errorf("RoutingKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "traintracker")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "traintracker" || ch.kinds[0] != amqp.ExchangeTopic {
		t.Fatalf("expected a topic exchange to be declared, got %v %v", ch.declared, ch.kinds)
	}

	state := sensor.State{ID: "Hamburg Hbf", State: sensor.StateOn, Available: true, Attributes: map[string]any{"destination": "Berlin Hbf"}}
	if err := p.Publish(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.messages))
	}
	msg := ch.messages[0]
	if msg.exchange != "traintracker" || msg.key != "sensor.hamburg_hbf" {
		t.Errorf("unexpected routing %s / %s", msg.exchange, msg.key)
	}
	if msg.msg.ContentType != "application/json" {
		t.Errorf("unexpected content type %q", msg.msg.ContentType)
	}

	var decoded sensor.State
	if err := json.Unmarshal(msg.msg.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded.State != sensor.StateOn || decoded.Attributes["destination"] != "Berlin Hbf" {
		t.Errorf("unexpected body %+v", decoded)
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Errorf("expected channel to be closed, err=%v", err)
	}
}

func TestPublisher_DeclareFailure(t *testing.T) {
	boom := errors.New("access refused")
	ch := &fakeChannel{declareErr: boom}
	if _, err := newPublisher(ch, "traintracker"); !errors.Is(err, boom) {
		t.Fatalf("expected declare error, got %v", err)
	}
	if !ch.closed {
		t.Error("expected the channel to be closed after a failed declare")
	}
}

func TestEncode_Unencodable(t *testing.T) {
	state := sensor.State{ID: "x", Attributes: map[string]any{"bad": make(chan int)}}
	if _, err := Encode(state); err == nil {
		t.Error("expected an error for attributes that cannot be encoded")
	}
}
