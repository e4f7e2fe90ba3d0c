package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedbot/models"

	"github.com/stretchr/testify/assert"
)

// fakeMessenger fails a fixed number of times before succeeding.
type fakeMessenger struct {
	failures int
	err      error
	calls    int
}

func (f *fakeMessenger) PostMessage(ctx context.Context, channelID int64, msg *Message) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func testConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		PostDelay:  time.Millisecond,
	}
}

func TestDispatcher_Post_SucceedsFirstTry(t *testing.T) {
	messenger := &fakeMessenger{}
	dispatcher := NewDispatcher(messenger, testConfig())

	err := dispatcher.Post(context.Background(), 555, &Message{Title: "hello"})

	assert.NoError(t, err)
	assert.Equal(t, 1, messenger.calls)
}

func TestDispatcher_Post_RetriesTransientFailures(t *testing.T) {
	messenger := &fakeMessenger{
		failures: 2,
		err:      models.NewDeliveryError(555, errors.New("rate limited")),
	}
	dispatcher := NewDispatcher(messenger, testConfig())

	err := dispatcher.Post(context.Background(), 555, &Message{Title: "hello"})

	assert.NoError(t, err)
	assert.Equal(t, 3, messenger.calls)
}

func TestDispatcher_Post_ExhaustsRetryBudget(t *testing.T) {
	messenger := &fakeMessenger{
		failures: 100,
		err:      models.NewDeliveryError(555, errors.New("rate limited")),
	}
	dispatcher := NewDispatcher(messenger, testConfig())

	err := dispatcher.Post(context.Background(), 555, &Message{Title: "hello"})

	var deliveryErr *models.DeliveryError
	assert.ErrorAs(t, err, &deliveryErr)
	// Initial attempt plus MaxRetries.
	assert.Equal(t, 4, messenger.calls)
}

func TestDispatcher_Post_NonDeliveryErrorIsTerminal(t *testing.T) {
	messenger := &fakeMessenger{
		failures: 100,
		err:      errors.New("unknown channel"),
	}
	dispatcher := NewDispatcher(messenger, testConfig())

	err := dispatcher.Post(context.Background(), 555, &Message{Title: "hello"})

	assert.Error(t, err)
	assert.Equal(t, 1, messenger.calls)
}

func TestDispatcher_Post_ContextCancelStopsRetries(t *testing.T) {
	messenger := &fakeMessenger{
		failures: 100,
		err:      models.NewDeliveryError(555, errors.New("rate limited")),
	}
	dispatcher := NewDispatcher(messenger, Config{
		MaxRetries: 100,
		RetryDelay: 50 * time.Millisecond,
		PostDelay:  time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := dispatcher.Post(ctx, 555, &Message{Title: "hello"})

	assert.Error(t, err)
	assert.Less(t, messenger.calls, 5)
}

func TestMessage_AddFieldChains(t *testing.T) {
	msg := (&Message{Title: "t"}).
		AddField("a", "1", false).
		AddField("b", "2", true)

	assert.Len(t, msg.Fields, 2)
	assert.Equal(t, "a", msg.Fields[0].Name)
	assert.True(t, msg.Fields[1].Inline)
}
