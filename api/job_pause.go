// Copyright (c) 2023 BVK Chaitanya

package api

import "fmt"

const JobPausePath = "/skinbot/job/pause"

type JobPauseRequest struct {
	Name string
}
type JobPauseResponse struct {
	FinalState string
}

func (r *JobPauseRequest) Check() error {
	if len(r.Name) == 0 {
		return fmt.Errorf("job name cannot be empty")
	}
	return nil
}
