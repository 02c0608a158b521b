package metrics

import (
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/influxdb"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Periodic influxdb reporting for the evmstore registry, gated on the
// `metrics.report.enabled` config key.
func init() {
	if !metrics.Enabled || !viper.GetBool("metrics.report.enabled") {
		return
	}

	host := viper.GetString("metrics.influxdb.host")
	db := viper.GetString("metrics.influxdb.db")

	go influxdb.InfluxDB(
		metrics.DefaultRegistry,
		viper.GetDuration("metrics.report.interval"),
		host,
		db,
		viper.GetString("metrics.influxdb.username"),
		viper.GetString("metrics.influxdb.password"),
		"evmstore/",
	)

	logrus.WithFields(logrus.Fields{
		"host": host, "db": db,
	}).Info("Reporting storage metrics to influxdb")
}
