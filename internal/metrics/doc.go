// Package metrics counts fetch attempts and produced records with
// Prometheus collectors.
//
// kgscrape is a short-lived CLI, so nothing is served over HTTP. At the
// end of a run the registry is written in the text exposition format for
// node-exporter's textfile collector (--metrics-file).
package metrics
