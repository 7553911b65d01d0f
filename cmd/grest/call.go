package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kroma-labs/grest/grest"
	"github.com/kroma-labs/grest/httpclient"
)

var errInvalidPair = errors.New("expected key=value")

type callFlags struct {
	method  string
	id      string
	suffix  string
	query   []string
	headers []string
	data    string
}

func newCallCommand(flags *globalFlags) *cobra.Command {
	cf := &callFlags{}

	cmd := &cobra.Command{
		Use:   "call <endpoint>",
		Short: "Call an endpoint and print the JSON result",
		Long: "Call an endpoint by name or accessor key. Unknown names are registered on the fly.\n" +
			"The result is printed as JSON on stdout; failures are printed on stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, flags, cf, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cf.method, "method", "X", "get", "HTTP method")
	f.StringVar(&cf.id, "id", "", "resource id appended to the endpoint URL")
	f.StringVar(&cf.suffix, "suffix", "", "raw suffix appended to the endpoint URL")
	f.StringArrayVarP(&cf.query, "query", "q", nil, "query parameter key=value (repeatable)")
	f.StringArrayVarP(&cf.headers, "header", "H", nil, "header key=value (repeatable)")
	f.StringVarP(&cf.data, "data", "d", "", "JSON request body")

	return cmd
}

func runCall(cmd *cobra.Command, flags *globalFlags, cf *callFlags, name string) error {
	client, err := newClient(cmd, flags)
	if err != nil {
		return err
	}
	defer client.Release()

	endpoint, err := resolveEndpoint(client, name)
	if err != nil {
		return err
	}

	reqCfg, targets, err := cf.build()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := endpoint.HTTP(ctx, reqCfg, targets...).Wait(ctx)
	if err != nil {
		var gErr *grest.Error
		if errors.As(err, &gErr) {
			_ = printJSON(cmd.ErrOrStderr(), map[string]any{
				"message": gErr.Message,
				"status":  gErr.Status,
				"data":    gErr.Data,
			})
		}
		return err
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"status": res.Status,
		"data":   res.Data,
	})
}

// resolveEndpoint looks name up as an accessor key, then as an endpoint
// name, registering it when unknown.
func resolveEndpoint(client *grest.Client, name string) (*grest.Endpoint, error) {
	if e, ok := client.Endpoint(name); ok {
		return e, nil
	}
	if e, ok := client.Endpoint(grest.AccessorKey(name)); ok {
		return e, nil
	}
	if err := client.Register(name); err != nil {
		return nil, err
	}
	return client.MustEndpoint(grest.AccessorKey(name)), nil
}

func (cf *callFlags) build() (httpclient.RequestConfig, []grest.Target, error) {
	cfg := httpclient.RequestConfig{Method: cf.method}

	if len(cf.headers) > 0 {
		headers, err := parsePairs(cf.headers)
		if err != nil {
			return cfg, nil, fmt.Errorf("--header: %w", err)
		}
		cfg.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			cfg.Headers[k] = v[len(v)-1]
		}
	}

	if cf.data != "" {
		if !json.Valid([]byte(cf.data)) {
			return cfg, nil, errors.New("--data: invalid JSON")
		}
		cfg.Data = json.RawMessage(cf.data)
	}

	var targets []grest.Target
	if cf.id != "" {
		targets = append(targets, grest.ID(cf.id))
	}
	if cf.suffix != "" {
		targets = append(targets, grest.Suffix(cf.suffix))
	}
	if len(cf.query) > 0 {
		query, err := parsePairs(cf.query)
		if err != nil {
			return cfg, nil, fmt.Errorf("--query: %w", err)
		}
		targets = append(targets, grest.Query(query))
	}

	return cfg, targets, nil
}

func parsePairs(pairs []string) (url.Values, error) {
	out := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w, got %q", errInvalidPair, p)
		}
		out.Add(k, v)
	}
	return out, nil
}
