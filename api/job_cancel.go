// Copyright (c) 2023 BVK Chaitanya

package api

import "fmt"

const JobCancelPath = "/skinbot/job/cancel"

type JobCancelRequest struct {
	Name string
}
type JobCancelResponse struct {
	FinalState string
}

func (r *JobCancelRequest) Check() error {
	if len(r.Name) == 0 {
		return fmt.Errorf("job name cannot be empty")
	}
	return nil
}
