// Copyright (c) 2023 BVK Chaitanya

package api

const JobListPath = "/skinbot/job/list"

type JobListRequest struct {
}

type JobListResponseItem struct {
	Name   string
	Type   string
	State  string
	Manual bool
}

type JobListResponse struct {
	Jobs []*JobListResponseItem
}
