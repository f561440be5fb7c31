package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

func newTestGenerator(url string, retries int) *Generator {
	return NewGenerator(Config{
		GeneratorURL:   url,
		GeneratorKey:   "secret",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		RetryBaseDelay: time.Millisecond,
	}, zerolog.New(io.Discard))
}

func TestGenerateSendsRequest(t *testing.T) {
	var got generatorRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"mcqs":[{"q":"What is shown?","options":["a","b","c","d"],"ans":2}]}`))
	}))
	defer srv.Close()

	raw, err := newTestGenerator(srv.URL+"/", 2).Generate(context.Background(), question.GenerateRequest{
		ImageDataURL: "data:image/jpeg;base64,AAAA",
		Topic:        "  cells ",
		Count:        50,
	})
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "What is shown?", raw[0].Q)

	assert.Equal(t, generatorRequest{ImageDataURL: "data:image/jpeg;base64,AAAA", Topic: "cells", Count: 30}, got)
}

func TestGenerateDefaultsCount(t *testing.T) {
	var got generatorRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"questions":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL, 0).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
	require.NoError(t, err)
	assert.Equal(t, question.DefaultGenerateCount, got.Count)
}

func TestGenerateRetriesTransientStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) < 3 {
					w.WriteHeader(status)
					return
				}
				_, _ = w.Write([]byte(`{"mcqs":[{"q":"ok","options":["a","b","c","d"],"ans":0}]}`))
			}))
			defer srv.Close()

			raw, err := newTestGenerator(srv.URL, 2).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
			require.NoError(t, err)
			assert.Len(t, raw, 1)
			assert.Equal(t, int32(3), calls.Load())
		})
	}
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL, 2).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL, 2).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateRetriesNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestGenerator(url, 1).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
	assert.Error(t, err)
}

func TestGenerateWithoutEndpoint(t *testing.T) {
	_, err := newTestGenerator("", 2).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
	assert.ErrorIs(t, err, question.ErrGeneratorUnavailable)
}

func TestGenerateMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`I could not read the image.`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL, 0).Generate(context.Background(), question.GenerateRequest{ImageDataURL: "x"})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{name: "object", payload: `{"mcqs":[{"q":"a","options":["1","2","3","4"],"ans":0}]}`, want: 1},
		{name: "questions key", payload: `{"questions":[{"q":"a"},{"q":"b"}]}`, want: 2},
		{name: "fenced", payload: "```json\n{\"mcqs\":[{\"q\":\"a\"}]}\n```", want: 1},
		{name: "chatter around object", payload: `Here you go: {"mcqs":[{"q":"a"}]} hope it helps`, want: 1},
		{name: "bare array", payload: `[{"q":"a"}]`, want: 1},
		{name: "no list", payload: `{"error":"quota"}`, wantErr: true},
		{name: "garbage", payload: `}{`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := decodePayload([]byte(tc.payload))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				return
			}
			require.NoError(t, err)
			assert.Len(t, raw, tc.want)
		})
	}
}

func TestGeneratedRecordsNormalize(t *testing.T) {
	raw, err := decodePayload([]byte(`{"mcqs":[{"q":" Mitochondria? ","options":["a","b","c","d"],"ans":3},{"q":"","options":[]}]}`))
	require.NoError(t, err)

	set := quiz.Normalize(raw)
	require.Len(t, set, 1)
	assert.Equal(t, "Mitochondria?", set[0].Text)
	assert.Equal(t, 3, set[0].CorrectIndex)
}
