package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"fieldops_backend/platform/apperr"
)

const housecallPageSize = 100

// HousecallCustomer is a CRM customer as the provider returns it.
type HousecallCustomer struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Company      string `json:"company"`
	MobileNumber string `json:"mobile_number"`
	HomeNumber   string `json:"home_number"`
	WorkNumber   string `json:"work_number"`
}

// HousecallJob is a provider job reduced to scheduling fields.
type HousecallJob struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Customer    struct {
		ID string `json:"id"`
	} `json:"customer"`
	Schedule struct {
		ScheduledStart *time.Time `json:"scheduled_start"`
	} `json:"schedule"`
}

type housecallCustomersPage struct {
	Customers  []HousecallCustomer `json:"customers"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
}

type housecallJobsPage struct {
	Jobs       []HousecallJob `json:"jobs"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// HousecallClient wraps the HouseCall Pro REST API.
type HousecallClient struct {
	http *resty.Client
}

func NewHousecallClient(baseURL string) *HousecallClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	return &HousecallClient{http: client}
}

// ListCustomers pages through all customers. maxPages bounds runaway
// pagination the same way the call log fetch does.
func (c *HousecallClient) ListCustomers(ctx context.Context, apiKey string, maxPages int) ([]HousecallCustomer, error) {
	var customers []HousecallCustomer

	for page := 1; page <= maxPages; page++ {
		var parsed housecallCustomersPage
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Token "+apiKey).
			SetQueryParams(map[string]string{
				"page":      fmt.Sprintf("%d", page),
				"page_size": fmt.Sprintf("%d", housecallPageSize),
			}).
			SetResult(&parsed).
			Get("/customers")
		if err != nil {
			return customers, fmt.Errorf("list customers page %d: %w", page, err)
		}
		if resp.StatusCode() == 401 {
			return customers, apperr.Unauthorized("housecall rejected the api key")
		}
		if resp.IsError() {
			return customers, apperr.Upstream(fmt.Sprintf("housecall customers returned %d", resp.StatusCode()))
		}

		customers = append(customers, parsed.Customers...)
		if parsed.TotalPages > 0 && page >= parsed.TotalPages {
			break
		}
		if len(parsed.Customers) == 0 {
			break
		}
	}

	return customers, nil
}

// ListJobs pages through all jobs.
func (c *HousecallClient) ListJobs(ctx context.Context, apiKey string, maxPages int) ([]HousecallJob, error) {
	var jobs []HousecallJob

	for page := 1; page <= maxPages; page++ {
		var parsed housecallJobsPage
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Token "+apiKey).
			SetQueryParams(map[string]string{
				"page":      fmt.Sprintf("%d", page),
				"page_size": fmt.Sprintf("%d", housecallPageSize),
			}).
			SetResult(&parsed).
			Get("/jobs")
		if err != nil {
			return jobs, fmt.Errorf("list jobs page %d: %w", page, err)
		}
		if resp.StatusCode() == 401 {
			return jobs, apperr.Unauthorized("housecall rejected the api key")
		}
		if resp.IsError() {
			return jobs, apperr.Upstream(fmt.Sprintf("housecall jobs returned %d", resp.StatusCode()))
		}

		jobs = append(jobs, parsed.Jobs...)
		if parsed.TotalPages > 0 && page >= parsed.TotalPages {
			break
		}
		if len(parsed.Jobs) == 0 {
			break
		}
	}

	return jobs, nil
}

type CreateHousecallJobParams struct {
	CustomerID  string     `json:"customer_id"`
	Description string     `json:"description"`
	ScheduledAt *time.Time `json:"scheduled_start,omitempty"`
}

// CreateJob creates a job in HouseCall Pro and returns its external id.
func (c *HousecallClient) CreateJob(ctx context.Context, apiKey string, params CreateHousecallJobParams) (*HousecallJob, error) {
	var created HousecallJob
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+apiKey).
		SetBody(params).
		SetResult(&created).
		Post("/jobs")
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if resp.StatusCode() == 401 {
		return nil, apperr.Unauthorized("housecall rejected the api key")
	}
	if resp.IsError() {
		return nil, apperr.Upstream(fmt.Sprintf("housecall job create returned %d", resp.StatusCode()))
	}
	if created.ID == "" {
		return nil, apperr.Upstream("housecall job id missing in response")
	}
	return &created, nil
}
