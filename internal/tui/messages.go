package tui

import "github.com/matheuskafuri/apod/internal/viewmodel"

type stateMsg struct {
	state viewmodel.State
}

type effectMsg struct {
	effect viewmodel.Effect
}

type clearToastMsg struct {
	seq int
}

type updateMsg struct {
	version string
}

type openErrMsg struct {
	err error
}
