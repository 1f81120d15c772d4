package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/BorisDmv/snip-api/internal/models"
)

// maxPostRunes depends on kind, so it is checked by hand; the blog limit is
// the struct-wide ceiling on Body.
const maxPostRunes = 280

// CreateInput is what an author submits for a new content item.
type CreateInput struct {
	Kind     models.Kind     `json:"kind" validate:"required,oneof=post blog"`
	Title    string          `json:"title" validate:"max=200"`
	Body     string          `json:"body" validate:"max=20000"`
	MediaURL string          `json:"media_url" validate:"omitempty,http_url"`
	Draft    bool            `json:"draft"`
	Schedule models.Schedule `json:"schedule" validate:"-"`
	Poll     *PollInput      `json:"poll"`
}

type PollInput struct {
	Question  string     `json:"question" validate:"required,max=280"`
	Options   []string   `json:"options" validate:"min=2,max=4,unique_fold,dive,required,max=80"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Patch lists the editable fields. Nil pointers leave a field untouched;
// Schedule is always recomputed (zero means unscheduled).
type Patch struct {
	Title    *string
	Body     *string
	MediaURL *string
	Schedule models.Schedule
}

type appealInput struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

var fields = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// unique_fold treats options differing only in case as duplicates.
	_ = v.RegisterValidation("unique_fold", func(fl validator.FieldLevel) bool {
		opts, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		seen := make(map[string]struct{}, len(opts))
		for _, o := range opts {
			key := strings.ToLower(o)
			if _, dup := seen[key]; dup {
				return false
			}
			seen[key] = struct{}{}
		}
		return true
	})
	return v
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{models.ErrValidation}, args...)...)
}

// checkFields runs the tag rules on s and reports the first failure as ErrValidation.
func checkFields(s any) error {
	err := fields.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationf("%v", err)
	}
	return describe(verrs[0])
}

func describe(fe validator.FieldError) error {
	name := fe.Namespace()
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return validationf("%s is required", name)
	case "max":
		if fe.Kind() == reflect.Slice {
			return validationf("%s allows at most %s entries", name, fe.Param())
		}
		return validationf("%s exceeds %s characters", name, fe.Param())
	case "min":
		return validationf("%s needs at least %s entries", name, fe.Param())
	case "oneof":
		return validationf("%s must be one of: %s", name, fe.Param())
	case "http_url":
		return validationf("%s must be an absolute http(s) URL", name)
	case "unique_fold":
		return validationf("%s must be distinct", name)
	}
	return validationf("%s is invalid", name)
}

func (in *CreateInput) normalize() {
	if in.Kind == "" {
		in.Kind = models.KindPost
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.MediaURL = strings.TrimSpace(in.MediaURL)
	if in.Poll != nil {
		in.Poll.Question = strings.TrimSpace(in.Poll.Question)
		for i := range in.Poll.Options {
			in.Poll.Options[i] = strings.TrimSpace(in.Poll.Options[i])
		}
	}
}

func (in CreateInput) validate(now time.Time) error {
	if err := checkFields(in); err != nil {
		return err
	}
	hasPoll := in.Poll != nil && in.Poll.Question != ""
	if in.Body == "" && in.MediaURL == "" && !hasPoll {
		return validationf("body, media or poll question is required")
	}
	if err := checkKindRules(in.Kind, in.Title, in.Body); err != nil {
		return err
	}
	if in.Poll != nil {
		if in.Kind != models.KindPost {
			return validationf("polls can only be attached to posts")
		}
		if in.Poll.ExpiresAt != nil && !in.Poll.ExpiresAt.After(now) {
			return validationf("poll expiry must be in the future")
		}
	}
	return nil
}

// checkKindRules holds the rules that depend on the content kind.
func checkKindRules(kind models.Kind, title, body string) error {
	if kind == models.KindBlog {
		if title == "" {
			return validationf("title is required for blogs")
		}
		return nil
	}
	if title != "" {
		return validationf("posts do not take a title")
	}
	if utf8.RuneCountInString(body) > maxPostRunes {
		return validationf("body exceeds %d characters", maxPostRunes)
	}
	return nil
}

func validateReason(reason string) error {
	return checkFields(appealInput{Reason: reason})
}
