// Package control
// Author: momentics <momentics@gmail.com>
//
// Control plane around the reactor: logger construction, Prometheus
// metrics, debug probes and the HTTP surface that exposes them. Nothing here touches reactor descriptors; the reactor
// publishes what it wants observed.
package control
