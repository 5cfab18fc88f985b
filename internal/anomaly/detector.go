// internal/anomaly/detector.go
package anomaly

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/config"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
)

// Detector checks accepted numeric updates against configured min/max rules.
// The reference device enforces soil-moisture thresholds on-device; this
// surfaces the same bounds server-side as dashboard alerts.
type Detector struct {
	rules map[string]config.Rule
	log   *logrus.Logger
}

func NewDetector(cfg config.Anomaly, log *logrus.Logger) *Detector {
	return &Detector{rules: cfg.Rules, log: log}
}

// Check returns zero or one alert for the update. Status updates and metrics
// without a rule pass through untouched.
func (d *Detector) Check(u data.Update) []data.Alert {
	if u.Kind == data.KindStatus {
		return nil
	}
	rule, ok := d.rules[u.Metric]
	if !ok {
		return nil
	}

	if u.Value < rule.Min || u.Value > rule.Max {
		alert := data.Alert{
			Timestamp: u.Timestamp,
			Severity:  "WARN",
			Message:   fmt.Sprintf("Anomaly detected for %s: Value %.2f is outside range [%.2f, %.2f]", u.Metric, u.Value, rule.Min, rule.Max),
			Metric:    u.Metric,
			Value:     u.Value,
		}
		d.log.Warnf("ALERT: %s", alert.Message)
		return []data.Alert{alert}
	}
	return nil
}
