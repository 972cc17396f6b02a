// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
)

func registerDetectMethods(d *Dispatcher) {
	d.register("detect.start", handleDetectStart)
	d.register("detect.abort", handleDetectAbort)
	d.register("detect.status", handleDetectStatus)
	d.register("detect.results", handleDetectResults)
}

type detectStartParams struct {
	PwmPaths []string `json:"pwmPaths"`
}

func handleDetectStart(ctx context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[detectStartParams](params)
	if err != nil {
		return nil, err
	}
	job, err := d.DetectMgr.Start(ctx, p.PwmPaths)
	if err != nil {
		return nil, err
	}
	return job.Status(), nil
}

func handleDetectAbort(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	job, ok := d.DetectMgr.Job()
	if !ok {
		return nil, fmt.Errorf("%w: no detection job running", ErrInvalidParams)
	}
	job.Abort()
	return job.Status(), nil
}

func handleDetectStatus(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	job, ok := d.DetectMgr.Job()
	if !ok {
		return nil, fmt.Errorf("%w: no detection job has run", ErrInvalidParams)
	}
	return job.Status(), nil
}

func handleDetectResults(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	job, ok := d.DetectMgr.Job()
	if !ok {
		return nil, fmt.Errorf("%w: no detection job has run", ErrInvalidParams)
	}
	return job.Status(), nil
}
