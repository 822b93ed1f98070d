// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obs_renders_total",
			Help: "Total number of descriptor set renders by target and error code",
		},
		[]string{"target", "code"},
	)

	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "obs_render_duration_seconds",
			Help:    "Descriptor set render latency in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"target"},
	)

	renderedObjectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obs_rendered_objects_total",
			Help: "Total number of objects rendered by kind",
		},
		[]string{"kind"},
	)
)
