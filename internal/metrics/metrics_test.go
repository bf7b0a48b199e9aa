// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUpstreamRequestOutcomes(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("shifts", "error"))

	RecordUpstreamRequest("shifts", errors.New("boom"), 10*time.Millisecond)

	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("shifts", "error"))
	if after != before+1 {
		t.Errorf("error counter = %v, want %v", after, before+1)
	}

	beforeOK := testutil.ToFloat64(UpstreamRequests.WithLabelValues("shifts", "success"))
	RecordUpstreamRequest("shifts", nil, 10*time.Millisecond)
	afterOK := testutil.ToFloat64(UpstreamRequests.WithLabelValues("shifts", "success"))
	if afterOK != beforeOK+1 {
		t.Errorf("success counter = %v, want %v", afterOK, beforeOK+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != before+1 {
		t.Errorf("gauge after start = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != before {
		t.Errorf("gauge after stop = %v, want %v", got, before)
	}
}
