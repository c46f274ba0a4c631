// Copyright (c) 2023 BVK Chaitanya

package api

import "fmt"

const JobResumePath = "/skinbot/job/resume"

type JobResumeRequest struct {
	Name string
}
type JobResumeResponse struct {
	FinalState string
}

func (r *JobResumeRequest) Check() error {
	if len(r.Name) == 0 {
		return fmt.Errorf("job name cannot be empty")
	}
	return nil
}
