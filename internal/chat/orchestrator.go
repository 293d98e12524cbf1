// Package chat owns the conversation and drives the upload and ask flows.
// The orchestrator allows exactly one in-flight extraction-or-model
// operation at a time, enforced by its state machine rather than by
// queueing: a second request while one is running is rejected outright.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"docuchat/internal/extract"
	"docuchat/internal/models"
	"docuchat/internal/textstat"
)

type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading_and_extracting"
	StateAwaiting  State = "awaiting_model_response"
	StateError     State = "error"
)

var (
	ErrBusy         = errors.New("another operation is in progress")
	ErrEmptyMessage = errors.New("nothing to send")
)

type Extractor interface {
	Extract(ctx context.Context, data []byte) (*extract.Result, error)
}

type Asker interface {
	Ask(ctx context.Context, question string, history []*models.Message, docText string) (string, error)
}

type AttachmentStore interface {
	Save(id, name string, data []byte) (string, error)
	Release(att *models.Attachment)
}

// Orchestrator exclusively owns the conversation history and at most one
// active attachment. Uploading a new file replaces, never supplements, the
// current attachment.
type Orchestrator struct {
	extractor Extractor
	gateway   Asker
	files     AttachmentStore

	mu         sync.Mutex
	state      State
	lastError  string
	history    []*models.Message
	attachment *models.Attachment
}

func New(extractor Extractor, gateway Asker, files AttachmentStore) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		gateway:   gateway,
		files:     files,
		state:     StateIdle,
	}
}

// begin moves into an in-flight state, rejecting concurrent operations.
// Starting any new action from the error state clears it.
func (o *Orchestrator) begin(next State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateUploading || o.state == StateAwaiting {
		return ErrBusy
	}
	o.lastError = ""
	o.state = next
	return nil
}

func (o *Orchestrator) fail(userMessage string) {
	o.mu.Lock()
	o.state = StateError
	o.lastError = userMessage
	o.mu.Unlock()
}

// Upload validates and extracts an uploaded file, replaces the current
// attachment on success and appends the synthesized analysis message. On
// failure the previous attachment is left untouched and the orchestrator
// carries the classified error until the next action.
func (o *Orchestrator) Upload(ctx context.Context, name, mediaType string, data []byte) (*models.Message, *models.Attachment, error) {
	if err := o.begin(StateUploading); err != nil {
		return nil, nil, err
	}

	if err := models.ValidateUpload(mediaType, int64(len(data))); err != nil {
		o.fail(err.Error())
		return nil, nil, err
	}

	res, err := o.extractor.Extract(ctx, data)
	if err != nil {
		o.fail(extractionUserMessage(err))
		return nil, nil, err
	}

	att := models.NewAttachment(name, mediaType, int64(len(data)))
	att.ExtractedText = res.Text
	att.Metadata = res.Metadata

	path, err := o.files.Save(att.ID, name, data)
	if err != nil {
		o.fail("Could not store the uploaded file. Please try again.")
		return nil, nil, err
	}
	att.FilePath = path

	stats := textstat.Compute(res.Text, res.PageCount)
	info := textstat.ExtractKeyInfo(res.Text)
	analysis := models.NewMessage(models.RoleAssistant, analysisContent(name, stats, info))

	o.mu.Lock()
	prev := o.attachment
	o.attachment = att
	o.history = append(o.history, analysis)
	o.state = StateIdle
	o.mu.Unlock()

	if prev != nil {
		o.files.Release(prev)
	}
	return analysis, att, nil
}

// Send appends a user message and asks the gateway with the conversation
// as it was before this turn. Sending is rejected while another operation
// is in flight and when there is neither text nor an attachment.
func (o *Orchestrator) Send(ctx context.Context, text string) (*models.Message, *models.Message, error) {
	text = strings.TrimSpace(text)

	o.mu.Lock()
	if o.state == StateUploading || o.state == StateAwaiting {
		o.mu.Unlock()
		return nil, nil, ErrBusy
	}
	if text == "" && o.attachment == nil {
		o.mu.Unlock()
		return nil, nil, ErrEmptyMessage
	}
	o.lastError = ""
	o.state = StateAwaiting

	prior := make([]*models.Message, len(o.history))
	copy(prior, o.history)
	att := o.attachment
	var docText string
	if att != nil {
		docText = att.ExtractedText
	}
	userMsg := models.NewMessage(models.RoleUser, text, att)
	o.history = append(o.history, userMsg)
	o.mu.Unlock()

	reply, err := o.gateway.Ask(ctx, text, prior, docText)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = StateError
		o.lastError = "The AI assistant is temporarily unavailable. Please try again in a moment."
		return userMsg, nil, err
	}
	aiMsg := models.NewMessage(models.RoleAssistant, reply)
	o.history = append(o.history, aiMsg)
	o.state = StateIdle
	return userMsg, aiMsg, nil
}

// RemoveAttachment releases the current attachment and returns to idle
// unconditionally. The conversation history is untouched.
func (o *Orchestrator) RemoveAttachment() {
	o.mu.Lock()
	att := o.attachment
	o.attachment = nil
	o.state = StateIdle
	o.lastError = ""
	o.mu.Unlock()

	if att != nil {
		o.files.Release(att)
	}
}

// Close releases the attachment on teardown. In-flight operations are
// abandoned, not cancelled; the display handle is released regardless.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	att := o.attachment
	o.attachment = nil
	o.mu.Unlock()

	if att != nil {
		o.files.Release(att)
	}
}

// Messages returns a snapshot copy of the conversation in display order.
func (o *Orchestrator) Messages() []*models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.Message, len(o.history))
	copy(out, o.history)
	return out
}

func (o *Orchestrator) CurrentAttachment() *models.Attachment {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attachment
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

func extractionUserMessage(err error) string {
	if exErr, ok := extract.AsError(err); ok {
		return exErr.UserMessage()
	}
	return "Something went wrong while reading the document. Please try again."
}
