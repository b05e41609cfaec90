package baremetal

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/red-hat-storage/ocs-resiliency/pkg/log"
)

const (
	systemPath = "/redfish/v1/Systems/System.Embedded.1/"
	resetPath  = systemPath + "Actions/ComputerSystem.Reset"

	powerStateOn  = "On"
	powerStateOff = "Off"

	resetTypeOn       = "On"
	resetTypeForceOff = "ForceOff"
)

// State helps get the power state of the node
type State struct {
	PowerState string
}

// RedfishClient talks to the Redfish API of the node BMCs
type RedfishClient struct {
	httpClient *http.Client
	scheme     string
}

// NewRedfishClient returns a client which accepts the self-signed certificates BMCs usually serve
func NewRedfishClient() *RedfishClient {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return &RedfishClient{
		httpClient: &http.Client{Transport: tr, Timeout: time.Minute},
		scheme:     "https",
	}
}

func (c *RedfishClient) do(ctx context.Context, method string, bmc BMC, path string, body interface{}) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewBuffer(data)
	}
	URL := fmt.Sprintf("%s://%s%s", c.scheme, bmc.Address, path)
	req, err := http.NewRequestWithContext(ctx, method, URL, payload)
	if err != nil {
		return nil, errors.Errorf("error creating http request: %v", err)
	}
	req.SetBasicAuth(bmc.User, bmc.Password)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "*/*")
	return c.httpClient.Do(req)
}

// GetPowerState returns the PowerState reported by the system of the BMC
func (c *RedfishClient) GetPowerState(ctx context.Context, bmc BMC) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, bmc, systemPath, nil)
	if err != nil {
		return "", errors.Errorf("unable to get current state of the node, err: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("unable to get current state of the node, status: %s", resp.Status)
	}
	power := new(State)
	if err := json.NewDecoder(resp.Body).Decode(power); err != nil {
		return "", errors.Errorf("unable to decode power state, err: %v", err)
	}
	return power.PowerState, nil
}

// Reset triggers the reset action of the given type on the system of the BMC
func (c *RedfishClient) Reset(ctx context.Context, bmc BMC, resetType string) error {
	resp, err := c.do(ctx, http.MethodPost, bmc, resetPath, map[string]string{"ResetType": resetType})
	if err != nil {
		return errors.Errorf("error creating post request: %v", err)
	}
	defer resp.Body.Close()
	log.Infof("[Redfish]: %v reset on %v returned %v", resetType, bmc.Address, resp.Status)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return errors.Errorf("%s reset failed with status %s: %s", resetType, resp.Status, string(body))
	}
	return nil
}
