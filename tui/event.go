package tui

import "github.com/syrm/podboard/dto"

// podsLoadedMsg carries the outcome of one pod fetch back to Update.
type podsLoadedMsg struct {
	pods []dto.Pod
	err  error
}
