package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pathway-notify/internal/models"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func liveConfig() *models.NotifyConfig {
	return &models.NotifyConfig{SendGrid: models.SendGridConfig{APIKey: "k", From: "admin@x.com"}}
}

func TestRecordProcessor_Process(t *testing.T) {
	log, logs := newObservedLogger()
	p := NewRecordProcessor(NewTemplateRenderer(), BuildTemplates(false, "", ""), log)

	params, err := p.Process(liveConfig(), testRecord)
	require.NoError(t, err)

	assert.Equal(t, "admin@x.com", params.From)
	assert.Equal(t, "a@x.com", params.To)
	assert.Equal(t, "admin@x.com", params.CC)
	assert.Contains(t, params.Subject, "Content Deleted from Degreed Pathway: P1")
	assert.False(t, strings.HasPrefix(params.Subject, DryRunSubjectPrefix))
	assert.Contains(t, params.Body, "http://w/1")

	entries := logs.FilterMessage("Sending email").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@x.com", fields["send_to"])
	assert.Equal(t, "P1", fields["pathway_title"])
	assert.Equal(t, "http://w/1", fields["wiki_url"])
}

func TestRecordProcessor_DryRun(t *testing.T) {
	cfg := liveConfig()
	cfg.DryRun = true
	p := NewRecordProcessor(NewTemplateRenderer(), BuildTemplates(true, "", ""), zap.NewNop())

	params, err := p.Process(cfg, testRecord)
	require.NoError(t, err)

	assert.Equal(t, "admin@x.com", params.To)
	assert.Equal(t, "admin@x.com", params.CC)
	assert.True(t, strings.HasPrefix(params.Subject, "TESTING - "))
	assert.True(t, strings.HasPrefix(params.Body, DryRunBodyPrefix))
}

func TestRecordProcessor_MissingFrom(t *testing.T) {
	log, logs := newObservedLogger()
	p := NewRecordProcessor(NewTemplateRenderer(), BuildTemplates(false, "", ""), log)

	params, err := p.Process(&models.NotifyConfig{SendGrid: models.SendGridConfig{APIKey: "k"}}, testRecord)

	assert.Nil(t, params)
	assert.True(t, errors.Is(err, models.ErrMissingFrom))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Zero(t, logs.FilterMessage("Sending email").Len())
}

func TestRecordProcessor_RenderFailure(t *testing.T) {
	log, logs := newObservedLogger()
	p := NewRecordProcessor(NewTemplateRenderer(), Templates{Subject: "ok", Body: "{{ .record.missing }}"}, log)

	params, err := p.Process(liveConfig(), testRecord)

	assert.Nil(t, params)
	assert.True(t, errors.Is(err, models.ErrTemplate))
	assert.Equal(t, 1, logs.FilterMessage("Failed to render body").Len())
}
