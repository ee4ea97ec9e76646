// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DeviceHubLabs/devicehub/devices"
)

var _ devices.LogRepository = (*logRepositoryMock)(nil)

type logRepositoryMock struct {
	mu   sync.Mutex
	logs []devices.Log
}

// NewLogRepository creates in-memory device log repository.
func NewLogRepository() devices.LogRepository {
	return &logRepositoryMock{}
}

func (lrm *logRepositoryMock) Save(_ context.Context, log devices.Log) (string, error) {
	lrm.mu.Lock()
	defer lrm.mu.Unlock()

	lrm.logs = append(lrm.logs, log)
	return log.ID, nil
}

func (lrm *logRepositoryMock) RetrieveByDevice(_ context.Context, deviceID string, pm devices.LogsPageMetadata) (devices.LogsPage, error) {
	lrm.mu.Lock()
	defer lrm.mu.Unlock()

	matched := []devices.Log{}
	for _, l := range lrm.logs {
		if l.DeviceID != deviceID {
			continue
		}
		if pm.Event != "" && l.Event != pm.Event {
			continue
		}
		if pm.From != nil && l.Timestamp.Before(*pm.From) {
			continue
		}
		if pm.To != nil && l.Timestamp.After(*pm.To) {
			continue
		}
		matched = append(matched, l)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := uint64(len(matched))
	if pm.Limit != 0 && uint64(len(matched)) > pm.Limit {
		matched = matched[:pm.Limit]
	}

	page := devices.LogsPage{
		LogsPageMetadata: pm,
		Logs:             matched,
	}
	page.Total = total

	return page, nil
}

func (lrm *logRepositoryMock) SummarizeUsage(_ context.Context, deviceID string, from, to time.Time) (float64, uint64, error) {
	lrm.mu.Lock()
	defer lrm.mu.Unlock()

	var total float64
	var count uint64
	for _, l := range lrm.logs {
		if l.DeviceID != deviceID || l.Event != devices.EventUnitsConsumed {
			continue
		}
		if l.Timestamp.Before(from) || l.Timestamp.After(to) {
			continue
		}
		if v, ok := l.Value.(float64); ok {
			total += v
		}
		count++
	}

	return total, count, nil
}
