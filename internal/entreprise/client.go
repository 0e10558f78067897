package entreprise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"go.uber.org/zap"
)

// Lookup resolves a siret into the etablissement and its entreprise.
type Lookup interface {
	Lookup(ctx context.Context, siret string) (*Result, error)
}

type Result struct {
	Entreprise    dossier.Entreprise
	Etablissement dossier.Etablissement
}

type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	maxRetry  int
	retryWait time.Duration
	logger    *zap.SugaredLogger
}

func NewClient(cfg config.EntrepriseConfig, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		// For unit test
		logger = util.NewTestLogger()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetry := cfg.MaxRetry
	if maxRetry < 0 {
		maxRetry = 0
	}

	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BASE_URL), "/"),
		token:     cfg.TOKEN,
		http:      &http.Client{Timeout: timeout},
		maxRetry:  maxRetry,
		retryWait: cfg.RetryWait,
		logger:    logger,
	}
}

// Lookup fetches the etablissement, then the entreprise of its siren.
// Whitespace in the siret is ignored. An unknown or malformed siret wraps
// dossier.ErrEntrepriseNotFound; anything else wraps dossier.ErrExternalLookup.
func (c *Client) Lookup(ctx context.Context, siret string) (*Result, error) {
	siret = util.NormalizeSiret(siret)
	if len(siret) != 14 || strings.Trim(siret, "0123456789") != "" {
		return nil, fmt.Errorf("siret %q is malformed: %w", siret, dossier.ErrEntrepriseNotFound)
	}

	var etab etablissementResponse
	if err := c.get(ctx, "/v2/etablissements/"+siret, &etab); err != nil {
		return nil, err
	}

	var ent entrepriseResponse
	if err := c.get(ctx, "/v2/entreprises/"+siret[:9], &ent); err != nil {
		return nil, err
	}

	return &Result{
		Entreprise:    ent.Entreprise.toEntreprise(),
		Etablissement: etab.Etablissement.toEtablissement(),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	q := url.Values{}
	q.Set("token", c.token)
	endpoint := c.baseURL + path + "?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetry; attempt++ {
		if attempt > 0 {
			c.logger.Warnf("Retrying entreprise lookup %s (attempt %d): %v", path, attempt+1, lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", dossier.ErrExternalLookup, ctx.Err())
			case <-time.After(c.retryWait):
			}
		}

		retry, err := c.do(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// do performs one request and reports whether a failure is worth retrying.
func (c *Client) do(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", dossier.ErrExternalLookup, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// a cancelled or expired caller context fails every further attempt
		if ctx.Err() != nil {
			return false, fmt.Errorf("%w: %v", dossier.ErrExternalLookup, err)
		}
		return true, fmt.Errorf("%w: %v", dossier.ErrExternalLookup, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusUnprocessableEntity:
		return false, fmt.Errorf("registry returned %d: %w", resp.StatusCode, dossier.ErrEntrepriseNotFound)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return true, fmt.Errorf("registry returned %d: %w", resp.StatusCode, dossier.ErrExternalLookup)
	case resp.StatusCode >= 300:
		return false, fmt.Errorf("registry returned %d: %w", resp.StatusCode, dossier.ErrExternalLookup)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: decoding response: %v", dossier.ErrExternalLookup, err)
	}
	return false, nil
}
