// Package connect resolves warehouse credentials and opens the
// connection the pipeline issues its single unload statement over.
// Credentials are either static configuration values or short-lived
// federated cluster credentials; the pipeline treats both forms
// identically once resolved.
package connect

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/jackc/pgx/v5"

	"github.com/lakebound/redshift-extract/internal/config"
	"github.com/lakebound/redshift-extract/internal/errors"
)

// credentialDuration is the lifetime requested for federated cluster
// credentials, in seconds.
const credentialDuration = 3600

// ClusterCredentialsAPI is the slice of the Redshift control-plane API
// the IAM credential path needs.
type ClusterCredentialsAPI interface {
	GetClusterCredentials(ctx context.Context, params *redshift.GetClusterCredentialsInput, optFns ...func(*redshift.Options)) (*redshift.GetClusterCredentialsOutput, error)
}

// Credentials resolves the (username, password) pair for the warehouse
// session. With IAM authentication enabled it requests short-lived
// cluster credentials; otherwise it returns the static config values.
// api may be nil, in which case a client is built from the ambient AWS
// configuration.
func Credentials(ctx context.Context, cfg *config.Config, api ClusterCredentialsAPI) (string, string, error) {
	if !cfg.UseIAMAuthentication {
		return cfg.Username, cfg.Password, nil
	}

	if api == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return "", "", errors.NewConnectionError(errors.CodeCredentialsFailed,
				"failed to load AWS config", err)
		}
		api = redshift.NewFromConfig(awsCfg)
	}

	out, err := api.GetClusterCredentials(ctx, &redshift.GetClusterCredentialsInput{
		DbUser:            aws.String(cfg.Username),
		DbName:            aws.String(cfg.Database),
		ClusterIdentifier: aws.String(cfg.ClusterIdentifier),
		DurationSeconds:   aws.Int32(credentialDuration),
		AutoCreate:        aws.Bool(false),
	})
	if err != nil {
		return "", "", errors.NewConnectionError(errors.CodeCredentialsFailed,
			"failed to get cluster credentials", err)
	}
	return aws.ToString(out.DbUser), aws.ToString(out.DbPassword), nil
}

// DSN renders the postgres-protocol connection URL for the cluster.
func DSN(cfg *config.Config, user, password string) string {
	sslmode := cfg.SSLMode
	if !cfg.SSL {
		sslmode = "disable"
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": []string{sslmode}}.Encode(),
	}
	return u.String()
}

// Conn is an open warehouse session. It satisfies unload.Execer and the
// discovery query contract.
type Conn struct {
	conn *pgx.Conn
}

// Open resolves credentials and connects to the cluster.
func Open(ctx context.Context, cfg *config.Config, api ClusterCredentialsAPI) (*Conn, error) {
	user, password, err := Credentials(ctx, cfg, api)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.Connect(ctx, DSN(cfg, user, password))
	if err != nil {
		return nil, errors.NewConnectionError(errors.CodeConnectFailed,
			"failed to connect to "+cfg.Host, err)
	}
	return &Conn{conn: conn}, nil
}

// Exec runs one statement.
func (c *Conn) Exec(ctx context.Context, sql string) error {
	_, err := c.conn.Exec(ctx, sql)
	return err
}

// Query runs a query and returns its rows.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

// Close closes the session.
func (c *Conn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
