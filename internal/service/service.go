package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/metrics"
)

// Options carries the collaborators shared by every service.
type Options struct {
	Notifier   Notifier
	Authorizer Authorizer
	Metrics    *metrics.Metrics
	Logger     *logrus.Logger
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Notifier == nil {
		o.Notifier = NopNotifier{}
	}
	if o.Authorizer == nil {
		o.Authorizer = ClaimsAuthorizer{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().UTC()
}
