package doctor

import (
	"context"
	"net"
)

// MetricsPortCheck verifies the metrics listen address is free.
type MetricsPortCheck struct {
	Addr string
}

func (c *MetricsPortCheck) Name() string     { return "metrics_port" }
func (c *MetricsPortCheck) Category() string { return CategoryMetrics }

func (c *MetricsPortCheck) Run(context.Context) CheckResult {
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fail(c.Name(), "Pick another port with --metrics-addr, or stop whatever holds it", "Can't listen on %s: %v", c.Addr, err)
	}
	ln.Close()
	return pass(c.Name(), "%s is free for /metrics", c.Addr)
}
