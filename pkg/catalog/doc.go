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

// Package catalog ships the built-in Prometheus and Grafana descriptors.
//
// The set lives in data/catalog.yaml. Config bundle contents are kept as
// plain files under data/files/<bundle-name>/ so that scrape configs, alert
// rules and dashboards can be edited with their native tooling; they are
// attached to the bundles when the catalog is first loaded.
//
// The set expects DOMAIN_NAME and GRAFANA_ADMIN_PASSWORD to be supplied.
// Every other parameter has a default.
package catalog
