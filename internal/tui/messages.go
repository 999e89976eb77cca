package tui

import "github.com/jask/gapview/internal/service"

type errMsg struct{ error }

type statusMsg string

type snapshotMsg service.Snapshot

type yearsMsg []int
