package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/user-directory/pkg/mailer/templates"
)

// Sender delivers a rendered email, e.g. mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// outcome tells the consumer how to settle a delivery.
type outcome int

const (
	ack     outcome = iota
	drop            // nack without requeue
	requeue         // nack with requeue
)

type worker struct {
	sender      Sender
	resolver    mailtpl.GeoResolver
	logger      *logrus.Logger
	sendTimeout time.Duration
}

var errEmptyJob = errors.New("email job has no recipient or content")

// render produces subject, text and html for a job, from its template when set.
func (w *worker) render(ctx context.Context, job *mailer.EmailJob) (string, string, string, error) {
	if job.To == "" {
		return "", "", "", errEmptyJob
	}
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", errEmptyJob
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	job.Normalize()
	mailtpl.Localize(ctx, w.resolver, job.Data)
	return mailtpl.Render(job.Template, job.Data)
}

func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	log := w.logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template})

	subject, text, html, err := w.render(ctx, &job)
	if err != nil {
		log.WithError(err).Warn("render failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()
	if err := w.sender.Send(c, job.To, subject, text, html); err != nil {
		log.WithError(err).Warn("send failed")
		return requeue
	}
	log.Info("email sent")
	return ack
}
