package qdrant

import (
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/echoguardhq/echoguard/pkg/crisis"
)

// payloadFromMeta flattens structured incident metadata into a Qdrant
// payload map. Timestamps are stored as RFC 3339 strings; Extra keys go
// into a nested "extra" struct for forward compatibility.
func payloadFromMeta(m crisis.Meta) map[string]any {
	payload := map[string]any{
		"type":            m.Type,
		"location":        m.Location,
		"description":     m.Description,
		"severity":        m.Severity,
		"protocol":        m.Protocol,
		"affected_people": int64(m.AffectedPeople),
		"casualties":      int64(m.Casualties),
		"damage_estimate": m.DamageEstimate,
		"response_time":   m.ResponseTime,
		"user_uploaded":   m.UserUploaded,
	}

	if !m.Timestamp.IsZero() {
		payload["timestamp"] = m.Timestamp.Format(time.RFC3339)
	}

	if len(m.Extra) > 0 {
		extra := make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
		payload["extra"] = extra
	}

	return payload
}

// metaFromPayload rebuilds incident metadata from a Qdrant payload.
// A missing or unparsable timestamp yields a zero Timestamp; the decay
// model fails soft on that and the pipeline surfaces a data-quality
// warning, so no error is raised here.
func metaFromPayload(payload map[string]*qdrant.Value) crisis.Meta {
	m := crisis.Meta{
		Type:           payload["type"].GetStringValue(),
		Location:       payload["location"].GetStringValue(),
		Description:    payload["description"].GetStringValue(),
		Severity:       payload["severity"].GetStringValue(),
		Protocol:       payload["protocol"].GetStringValue(),
		AffectedPeople: int(payload["affected_people"].GetIntegerValue()),
		Casualties:     int(payload["casualties"].GetIntegerValue()),
		DamageEstimate: payload["damage_estimate"].GetStringValue(),
		ResponseTime:   payload["response_time"].GetStringValue(),
		UserUploaded:   payload["user_uploaded"].GetBoolValue(),
	}

	if ts := payload["timestamp"].GetStringValue(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			m.Timestamp = parsed
		}
	}

	if extra := payload["extra"].GetStructValue(); extra != nil {
		fields := extra.GetFields()
		if len(fields) > 0 {
			m.Extra = make(map[string]string, len(fields))
			for k, v := range fields {
				m.Extra[k] = v.GetStringValue()
			}
		}
	}

	return m
}
