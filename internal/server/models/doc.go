// Package models defines server-side rows that have no client counterpart.
// Missions, rewards and accounts use the shared internal/models types.
package models
