// Package classifier turns a raw appointment request into normalized booking
// fields plus a suggested specialty and priority using a chat completion model.
// It never fails: any problem with the model yields the deterministic fallback.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/model"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("clinic-booking/classifier")

const (
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 10 * time.Second

	systemPrompt = "You are a healthcare appointment processing AI. Always respond with valid JSON."
)

// ChatCompleter is the slice of the OpenAI client the classifier needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Result is the normalized view of a request.
type Result struct {
	PatientName        string `json:"patient_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	RequestedDate      string `json:"requested_date"`
	RequestedTime      string `json:"requested_time"`
	DoctorPreference   string `json:"doctor_preference"`
	ReasonForVisit     string `json:"reason_for_visit"`
	SuggestedSpecialty string `json:"suggested_specialty"`
	Priority           string `json:"priority"`
	// Fallback is true when the result was built without the model.
	Fallback bool `json:"-"`
}

type Options struct {
	Model   string
	Timeout time.Duration
	Metrics *metrics.Metrics
}

type Classifier struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
	metrics *metrics.Metrics
}

// New builds a Classifier. A nil client puts it in fallback-only mode.
func New(client ChatCompleter, opts Options) *Classifier {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Classifier{
		client:  client,
		model:   opts.Model,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
	}
}

// NewOpenAIClient returns a client for the OpenAI API, or nil when no key is configured.
func NewOpenAIClient(apiKey, baseURL string) ChatCompleter {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

var errNoClient = errors.New("classifier: no completion client configured")

// Classify asks the model to normalize req. It always returns a usable Result.
func (c *Classifier) Classify(ctx context.Context, req model.AppointmentRequest) Result {
	ctx, span := tracer.Start(ctx, "classifier.classify")
	defer span.End()

	start := time.Now()
	res, err := c.complete(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier fallback")
		util.LoggerFromContext(ctx).Warn().Err(err).Msg("classifier failed, using fallback")
		util.LogClassifierFallback(err.Error())
		c.metrics.ObserveClassifier(metrics.ClassifierFailure, elapsed)
		return Fallback(req)
	}

	span.SetAttributes(
		attribute.String("clinic.classifier.specialty", res.SuggestedSpecialty),
		attribute.String("clinic.classifier.priority", res.Priority),
	)
	c.metrics.ObserveClassifier(metrics.ClassifierSuccess, elapsed)
	return res
}

func (c *Classifier) complete(ctx context.Context, req model.AppointmentRequest) (Result, error) {
	if c.client == nil {
		return Result{}, errNoClient
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return Result{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("classifier: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("classifier: completion returned no choices")
	}

	var parsed Result
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Result{}, fmt.Errorf("classifier: decode completion: %w", err)
	}
	log.Debug().Str("specialty", parsed.SuggestedSpecialty).Str("priority", parsed.Priority).Msg("classifier completion parsed")
	return merge(parsed, req), nil
}

// Fallback builds a Result from the request alone.
func Fallback(req model.AppointmentRequest) Result {
	preference := req.DoctorPreference
	if preference == "" {
		preference = model.SpecialtyFamilyMedicine
	}
	return Result{
		PatientName:        req.PatientName,
		Email:              req.Email,
		Phone:              req.Phone,
		RequestedDate:      req.PreferredDate,
		RequestedTime:      req.PreferredTime,
		DoctorPreference:   preference,
		ReasonForVisit:     req.ReasonForVisit,
		SuggestedSpecialty: model.SpecialtyFamilyMedicine,
		Priority:           model.PriorityMedium,
		Fallback:           true,
	}
}

// merge fills empty or unusable model output from the request and
// canonicalizes specialty and priority.
func merge(parsed Result, req model.AppointmentRequest) Result {
	out := Result{
		PatientName:      util.NormalizeName(firstNonEmpty(parsed.PatientName, req.PatientName)),
		Email:            firstNonEmpty(parsed.Email, req.Email),
		Phone:            firstNonEmpty(parsed.Phone, req.Phone),
		RequestedDate:    req.PreferredDate,
		RequestedTime:    req.PreferredTime,
		DoctorPreference: firstNonEmpty(parsed.DoctorPreference, model.SpecialtyFamilyMedicine),
		ReasonForVisit:   util.NormalizeName(firstNonEmpty(parsed.ReasonForVisit, req.ReasonForVisit)),
	}
	if d := strings.TrimSpace(parsed.RequestedDate); validLayout("2006-01-02", d) {
		out.RequestedDate = d
	}
	if t := strings.TrimSpace(parsed.RequestedTime); validLayout("15:04", t) {
		out.RequestedTime = t
	}

	out.SuggestedSpecialty = model.SpecialtyFamilyMedicine
	if s, ok := model.CanonicalSpecialty(parsed.SuggestedSpecialty); ok {
		out.SuggestedSpecialty = s
	}
	out.Priority = model.PriorityMedium
	if p, ok := model.CanonicalPriority(parsed.Priority); ok {
		out.Priority = p
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func validLayout(layout, value string) bool {
	if value == "" {
		return false
	}
	_, err := time.Parse(layout, value)
	return err == nil
}

// stripFences removes a surrounding ```json ... ``` block if the model added one.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[i+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
