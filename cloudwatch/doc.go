// Package cloudwatch models the pieces of a CloudWatch monitoring graph:
// metrics, alarms over those metrics, dashboard widgets, and the dashboard
// that lays them out.
//
// Nothing in this package talks to AWS. Values that are only known at deploy
// time, such as the region, are carried as placeholders from package token
// and resolved when a dashboard body is rendered.
package cloudwatch
