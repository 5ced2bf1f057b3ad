// Package internaldefs holds the shared metric name/help definitions used by
// the Prometheus and OTel exporters. It exists so both exporters render the
// same metric families without duplicating the tables.
package internaldefs
