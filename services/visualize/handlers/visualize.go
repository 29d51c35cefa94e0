// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP endpoints of the visualize API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/Aatricks/qvt-back/services/visualize/pipeline"
)

var visualizeTracer = otel.Tracer("qvt.visualize.handlers")

// ErrorResponse is the API error envelope. SupportedChartKeys is only
// populated for chart-key related errors, null otherwise.
type ErrorResponse struct {
	Code               string   `json:"code"`
	Message            string   `json:"message"`
	Details            []string `json:"details"`
	SupportedChartKeys []string `json:"supported_chart_keys"`
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SupportedKeys returns the sorted registered chart keys.
func SupportedKeys(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, p.SupportedKeys())
	}
}

// Visualize handles POST /visualize/:chartKey: a multipart form with a
// required hr_file, an optional survey_file and optional JSON-encoded
// filters and config fields.
func Visualize(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := visualizeTracer.Start(c.Request.Context(), "Visualize")
		defer span.End()

		chartKey := c.Param("chartKey")
		span.SetAttributes(attribute.String("chart_key", chartKey))

		req := pipeline.Request{ChartKey: chartKey}

		// Malformed JSON in filters or config is terminal before any
		// dataset bytes are read.
		if raw := c.PostForm("filters"); raw != "" {
			filters, err := pipeline.ParseFilters([]byte(raw))
			if err != nil {
				payloadError(c, "Invalid JSON payload in filters/config", err)
				return
			}
			req.Filters = filters
		}
		if raw := c.PostForm("config"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Config); err != nil {
				payloadError(c, "Invalid JSON payload in filters/config", err)
				return
			}
		}

		hrHeader, err := c.FormFile("hr_file")
		if err != nil {
			payloadError(c, "hr_file upload is required", err)
			return
		}
		req.HRFilename = hrHeader.Filename
		if req.HRContent, err = readUpload(hrHeader); err != nil {
			payloadError(c, "Could not read hr_file upload", err)
			return
		}

		if svHeader, err := c.FormFile("survey_file"); err == nil {
			req.SurveyFilename = svHeader.Filename
			if req.SurveyContent, err = readUpload(svHeader); err != nil {
				payloadError(c, "Could not read survey_file upload", err)
				return
			}
		}

		env, err := p.Generate(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			writeDomainError(c, p, err)
			return
		}
		c.JSON(http.StatusOK, env)
	}
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func payloadError(c *gin.Context, message string, err error) {
	slog.Warn("visualize request rejected", "reason", message, "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    pipeline.CodePayloadError,
		Message: message,
		Details: []string{err.Error()},
	})
}

func writeDomainError(c *gin.Context, p *pipeline.Pipeline, err error) {
	var de *pipeline.DomainError
	if !errors.As(err, &de) {
		slog.Error("visualize pipeline returned unclassified error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    pipeline.CodeInternalError,
			Message: "Internal error",
			Details: []string{err.Error()},
		})
		return
	}

	resp := ErrorResponse{Code: de.Code, Message: de.Message, Details: de.Details}
	if resp.Details == nil {
		resp.Details = []string{}
	}
	status := http.StatusBadRequest
	switch de.Code {
	case pipeline.CodeInvalidChartKey:
		status = http.StatusNotFound
		resp.SupportedChartKeys = p.SupportedKeys()
	case pipeline.CodeInternalError:
		status = http.StatusInternalServerError
	}
	slog.Info("visualize request failed", "code", de.Code, "message", de.Message)
	c.JSON(status, resp)
}
