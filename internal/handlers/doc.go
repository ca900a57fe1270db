// Package handlers implements the read-only HTTP API over stored runs.
//
// Handlers delegate to services.ResultService and only deal with parameter
// validation, pagination, error mapping and model conversion.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │  v1.RegisterHandlers (param binding)
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Filter validation                                            │
//	│  - page/pageSize to limit/offset                                │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                 services.ResultService -> store                 │
//	└─────────────────────────────────────────────────────────────────┘
//
// # API Endpoints
//
//	┌────────┬────────────────────────┬──────────────────────────────────────┐
//	│ Method │ Endpoint               │ Description                          │
//	├────────┼────────────────────────┼──────────────────────────────────────┤
//	│ GET    │ /runs                  │ List runs, most recent first         │
//	│ GET    │ /runs/{id}             │ Get one run                          │
//	│ GET    │ /runs/{id}/results     │ List the task results of a run       │
//	└────────┴────────────────────────┴──────────────────────────────────────┘
//
// GET /runs accepts graph and status (repeatable), page and pageSize.
// GET /runs/{id}/results accepts status, task and sort (repeatable), page and
// pageSize. A sort value is a field name, prefixed with "-" for descending
// order: task, status, started, finished.
//
// Pagination defaults to page 1 of 20 items; pageSize is capped at 100.
//
// # Error Handling
//
//	{ "error": "error message" }
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Invalid filter or sort       │
//	│ ResourceNotFoundError       │ 404    │ Run doesn't exist            │
//	│ Internal error              │ 500    │ Unexpected store errors      │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
