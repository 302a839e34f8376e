package source

import (
	"context"
	"strconv"

	"livestock-sync/internal/livestock_sync/model"
)

// Endpoint names used in logs and failures.
const (
	EndpointFarmList   = "farm-list"
	EndpointAnimalList = "animal-list"
	EndpointHistory    = "animal-history"
	EndpointGrade      = "grade"
)

// Endpoints holds the upstream URLs.
type Endpoints struct {
	FarmListURL   string
	AnimalListURL string
	HistoryURL    string
	GradeURL      string
}

// Adapters performs the four upstream calls the pipeline needs. Each method makes exactly
// one request and returns either a payload or a *Failure.
type Adapters struct {
	Client     *Client
	Endpoints  Endpoints
	FarmAPIKey string // farm-data source, sent as api_key header
	ServiceKey string // history and grade sources
}

// FetchFarms returns the full farm list.
func (a *Adapters) FetchFarms(ctx context.Context) ([]model.RawFarm, error) {
	body, err := a.Client.Do(ctx, Request{
		Endpoint: EndpointFarmList,
		URL:      a.Endpoints.FarmListURL,
		Method:   MethodGet,
		Headers:  map[string]string{"api_key": a.FarmAPIKey},
	})
	if err != nil {
		return nil, err
	}
	farms, err := ParseFarmList(body)
	if err != nil {
		return nil, parseFailure(EndpointFarmList, err)
	}
	return farms, nil
}

// FetchAnimalList submits the farm's identity and returns the animal numbers registered to
// it. Zero rows is an empty result, not a failure.
func (a *Adapters) FetchAnimalList(ctx context.Context, farm model.Farm, cred model.CredentialPair) ([]string, error) {
	body, err := a.Client.Do(ctx, Request{
		Endpoint: EndpointAnimalList,
		URL:      a.Endpoints.AnimalListURL,
		Method:   MethodPostJSON,
		Params: map[string]string{
			"userId":       cred.ID,
			"apiKey":       cred.Key,
			"farmUniqueNo": farm.FarmUniqueNo,
			"farmerNm":     farm.OwnerName,
			"farmerHtelNo": farm.Phone,
		},
	})
	if err != nil {
		return nil, err
	}
	animals, err := ParseAnimalRows(body)
	if err != nil {
		return nil, parseFailure(EndpointAnimalList, err)
	}
	return animals, nil
}

// FetchHistoryOption fetches one trace option (1..9) for an animal.
func (a *Adapters) FetchHistoryOption(ctx context.Context, cattleNo string, option int) (map[string]any, error) {
	body, err := a.Client.Do(ctx, Request{
		Endpoint: EndpointHistory,
		URL:      a.Endpoints.HistoryURL,
		Method:   MethodGet,
		Params: map[string]string{
			"ServiceKey": a.ServiceKey,
			"traceNo":    cattleNo,
			"optionNo":   strconv.Itoa(option),
		},
	})
	if err != nil {
		return nil, err
	}
	payload, err := ParseMarkupMap(body)
	if err != nil {
		return nil, parseFailure(EndpointHistory, err)
	}
	return payload, nil
}

// FetchGrade fetches grade confirmation data for a slaughtered animal.
func (a *Adapters) FetchGrade(ctx context.Context, cattleNo string) (map[string]any, error) {
	body, err := a.Client.Do(ctx, Request{
		Endpoint: EndpointGrade,
		URL:      a.Endpoints.GradeURL,
		Method:   MethodGet,
		Params: map[string]string{
			"ServiceKey": a.ServiceKey,
			"animalNo":   cattleNo,
		},
	})
	if err != nil {
		return nil, err
	}
	payload, err := ParseMarkupMap(body)
	if err != nil {
		return nil, parseFailure(EndpointGrade, err)
	}
	return payload, nil
}
