package app

import "github.com/shandysiswandi/isaback/internal/pkg/router"

type healthResponse struct {
	Ready bool `json:"ready"`
}

func (healthResponse) Message() string { return "ok" }

// health answers 200 while the process is up; ready tells whether the
// background bootstrap finished.
func (a *App) health(*router.Request) (any, error) {
	return healthResponse{Ready: a.ready.Load()}, nil
}
