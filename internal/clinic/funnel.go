// Package clinic reports how visitors move through the booking funnel. It
// reads the process's own metric registry; nothing is persisted.
package clinic

import (
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

const (
	metricRecommendations = "smilecare_booking_recommendations_total"
	metricWizardOpens     = "smilecare_booking_wizard_opens_total"
	metricGateRejections  = "smilecare_booking_gate_rejections_total"
	metricSubmissions     = "smilecare_booking_submissions_total"
	metricHandoffLatency  = "smilecare_booking_handoff_latency_seconds"
	metricActiveSessions  = "smilecare_booking_active_sessions"
)

// LatencySnapshot summarises the hand-off latency histogram.
type LatencySnapshot struct {
	Total int64   `json:"total"`
	P90Ms float64 `json:"p90_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// FunnelSnapshot is the booking funnel since process start.
type FunnelSnapshot struct {
	GeneratedAt          string                      `json:"generated_at"`
	ActiveSessions       int64                       `json:"active_sessions"`
	Recommendations      map[string]int64            `json:"recommendations"`
	WizardOpens          map[string]map[string]int64 `json:"wizard_opens"`
	GateRejections       map[string]map[string]int64 `json:"gate_rejections"`
	BookingsByPayment    map[string]int64            `json:"bookings_by_payment"`
	Bookings             int64                       `json:"bookings"`
	HandoffFailures      int64                       `json:"handoff_failures"`
	BookingConversionPct float64                     `json:"booking_conversion_pct"`
	HandoffLatency       LatencySnapshot             `json:"handoff_latency"`
}

// FunnelHandler serves the funnel snapshot as JSON.
type FunnelHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
	now      func() time.Time
}

func NewFunnelHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *FunnelHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &FunnelHandler{gatherer: gatherer, logger: logger, now: time.Now}
}

// GetFunnel returns the current funnel.
// GET /api/v1/stats/funnel
func (h *FunnelHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	snap, err := Snapshot(h.gatherer)
	if err != nil {
		h.logger.Error("failed to gather booking metrics", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	snap.GeneratedAt = h.now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, snap)
}

// Snapshot builds the funnel from gathered metric families.
func Snapshot(gatherer prometheus.Gatherer) (FunnelSnapshot, error) {
	snap := FunnelSnapshot{
		Recommendations:   map[string]int64{},
		WizardOpens:       map[string]map[string]int64{},
		GateRejections:    map[string]map[string]int64{},
		BookingsByPayment: map[string]int64{},
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap, err
	}

	var appointmentOpens int64
	for _, mf := range mfs {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case metricRecommendations:
			for _, m := range mf.Metric {
				snap.Recommendations[labelValue(m, "urgency")] += counterValue(m)
			}
		case metricWizardOpens:
			for _, m := range mf.Metric {
				wizard := labelValue(m, "wizard")
				addNested(snap.WizardOpens, wizard, labelValue(m, "entry"), counterValue(m))
				if wizard == "appointment" {
					appointmentOpens += counterValue(m)
				}
			}
		case metricGateRejections:
			for _, m := range mf.Metric {
				addNested(snap.GateRejections, labelValue(m, "wizard"), labelValue(m, "step"), counterValue(m))
			}
		case metricSubmissions:
			for _, m := range mf.Metric {
				n := counterValue(m)
				snap.BookingsByPayment[labelValue(m, "payment")] += n
				snap.Bookings += n
				if labelValue(m, "status") != "confirmed" {
					snap.HandoffFailures += n
				}
			}
		case metricActiveSessions:
			for _, m := range mf.Metric {
				snap.ActiveSessions += int64(m.GetGauge().GetValue())
			}
		case metricHandoffLatency:
			snap.HandoffLatency = latencySnapshot(mf)
		}
	}

	if appointmentOpens > 0 {
		snap.BookingConversionPct = float64(snap.Bookings) / float64(appointmentOpens) * 100.0
	}
	return snap, nil
}

func latencySnapshot(family *dto.MetricFamily) LatencySnapshot {
	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64
	for _, metric := range family.Metric {
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		sampleCount += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if sampleCount == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper)+1)
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	// The +Inf bucket is implicit in gathered families.
	if _, ok := cumulativeByUpper[math.Inf(1)]; !ok {
		cumulativeByUpper[math.Inf(1)] = sampleCount
		uppers = append(uppers, math.Inf(1))
	}
	sort.Float64s(uppers)

	return LatencySnapshot{
		Total: int64(sampleCount),
		P90Ms: histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper) * 1000.0,
		P95Ms: histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper) * 1000.0,
	}
}

// histogramQuantile interpolates linearly inside the bucket holding the
// q-th sample. Samples past the last finite bound report that bound.
func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	target := q * float64(total)
	var prevUpper, prevCum float64
	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}
		bucketCount := cum - prevCum
		if bucketCount <= 0 {
			return upper
		}
		return prevUpper + (upper-prevUpper)*((target-prevCum)/bucketCount)
	}
	return prevUpper
}

func counterValue(m *dto.Metric) int64 {
	return int64(m.GetCounter().GetValue())
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func addNested(dst map[string]map[string]int64, outer, inner string, n int64) {
	if dst[outer] == nil {
		dst[outer] = map[string]int64{}
	}
	dst[outer][inner] += n
}
