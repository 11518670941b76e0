package usecase

import (
	"context"
	"log/slog"

	"returnsdesk/src/core/domain"
)

// ReturnService drives the return form on behalf of the HTTP layer.
// It validates and reports; it never stores a return request.
type ReturnService struct {
	log *slog.Logger
}

func NewReturnService(log *slog.Logger) *ReturnService {
	return &ReturnService{log: log}
}

// ReturnOption is one entry of a select widget.
type ReturnOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ReturnOptions lists the choices offered by the form's select widgets.
type ReturnOptions struct {
	Reasons       []ReturnOption `json:"reasons"`
	RefundMethods []ReturnOption `json:"refund_methods"`
}

// Options returns the fixed reasons and refund methods.
func (s *ReturnService) Options() ReturnOptions {
	opts := ReturnOptions{
		Reasons:       make([]ReturnOption, 0, len(domain.ReturnReasons)),
		RefundMethods: make([]ReturnOption, 0, len(domain.RefundMethods)),
	}
	for _, r := range domain.ReturnReasons {
		opts.Reasons = append(opts.Reasons, ReturnOption{Value: string(r), Label: string(r)})
	}
	for _, m := range domain.RefundMethods {
		opts.RefundMethods = append(opts.RefundMethods, ReturnOption{Value: string(m), Label: m.Label()})
	}
	return opts
}

// ReturnSubmission is the outcome of submitting a draft.
type ReturnSubmission struct {
	Closed        bool                  `json:"closed"`
	Notifications []domain.Notification `json:"notifications"`
}

// Submit fills a fresh form with draft and submits it.
// Invalid enumerated values are reported as validation errors before submit.
func (s *ReturnService) Submit(ctx context.Context, draft domain.ReturnDraft) (*ReturnSubmission, error) {
	rec := &NotificationRecorder{}
	closed := 0
	form := NewReturnForm(FormOptions{
		OnClose:  func() { closed++ },
		Notifier: rec,
	})

	for _, field := range domain.RequiredReturnFields {
		if err := form.Set(field, draft.Value(field)); err != nil {
			return nil, err
		}
	}
	for _, img := range draft.Images {
		form.AttachImage(img)
	}

	accepted := form.Submit()
	s.log.DebugContext(ctx, "return draft submitted",
		"accepted", accepted,
		"missing", len(draft.MissingFields()),
	)

	return &ReturnSubmission{
		Closed:        accepted && closed == 1,
		Notifications: rec.Notifications(),
	}, nil
}
