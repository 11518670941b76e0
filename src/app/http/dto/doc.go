// Package dto contains Data Transfer Objects for HTTP requests and responses.
//
// DTOs are separate from domain types to control the JSON contract and to
// carry binding tags. Request types are named <Action><Resource>Request and
// convert to domain values with a To<Domain> method.
package dto
