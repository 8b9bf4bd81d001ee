package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

const requestTimeout = 30 * time.Second

type daemonClient struct {
	baseURL string
	http    *http.Client
}

func getClient(ctx *cli.Context) *daemonClient {
	return &daemonClient{
		baseURL: strings.TrimRight(ctx.String("rpcserver"), "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *daemonClient) get(path string) (json.RawMessage, error) {
	return c.do(http.MethodGet, path, nil)
}

func (c *daemonClient) post(path string, body interface{}) (json.RawMessage, error) {
	return c.do(http.MethodPost, path, body)
}

func (c *daemonClient) do(
	method, path string, body interface{},
) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to daemon: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil &&
			errResp.Error != "" {
			return nil, fmt.Errorf("%s (%d)", errResp.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("request failed with status %s", resp.Status)
	}

	return respBody, nil
}

func printRespJSON(resp json.RawMessage) {
	var out bytes.Buffer
	if err := json.Indent(&out, resp, "", "\t"); err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(out.String())
}
