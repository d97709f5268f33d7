package handler

import (
	"encoding/json"
	"io"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"alertexecutor/src/connectors"
	"alertexecutor/src/mapper"
	"alertexecutor/src/model"
)

type alertExecutor interface {
	ExecuteAlert(alert *model.Alert) ([]*connectors.Response, error)
}

// WebhookHandler returns the POST /webhook handler: it validates the
// alert shape, canonicalizes the symbol and forwards the planned orders
// to the exchange. Shape failures answer 400 before any exchange call.
func WebhookHandler(exec alertExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, model.WebhookResponse{
				Status:  "error",
				Message: "Invalid webhook data format",
			})
			return
		}

		alert, err := mapper.ParseAlert(body)
		if err != nil {
			logger.WithError(err).Warn("rejected webhook with invalid shape")
			writeJSON(w, http.StatusBadRequest, model.WebhookResponse{
				Status:  "error",
				Message: "Invalid webhook data format",
			})
			return
		}

		data := mapper.TransformAlert(alert)
		logger.WithFields(logger.Fields{
			"symbol":   data.Symbol,
			"side":     data.Side,
			"strategy": data.Strategy,
			"tps":      len(data.Tps),
		}).Info("Valid webhook received")

		responses, err := exec.ExecuteAlert(data)
		if err != nil {
			logger.WithError(err).WithField("submitted", len(responses)).
				Error("order execution failed")
			writeJSON(w, http.StatusBadGateway, model.WebhookResponse{
				Status:  "error",
				Message: err.Error(),
			})
			return
		}

		logger.WithField("orders", len(responses)).Info("webhook orders submitted")
		writeJSON(w, http.StatusOK, model.WebhookResponse{
			Status:  "success",
			Message: "Webhook received!",
			Data:    data,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body model.WebhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode webhook response")
	}
}
