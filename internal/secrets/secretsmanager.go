package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const currentStage = "AWSCURRENT"

// SecretsManagerAPI is the part of the Secrets Manager client the store uses.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerStore reads the AWSCURRENT version of a secret from AWS
// Secrets Manager. Each call goes to the service; nothing is cached.
type SecretsManagerStore struct {
	client SecretsManagerAPI
	logger *logging.Logger
}

func NewSecretsManagerStore(client SecretsManagerAPI, logger *logging.Logger) *SecretsManagerStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &SecretsManagerStore{client: client, logger: logger}
}

func (s *SecretsManagerStore) Latest(ctx context.Context, name string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("secrets: secrets manager client not configured")
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(name),
		VersionStage: aws.String(currentStage),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		s.logger.Error("secrets manager lookup failed", "error", err, "secret", name)
		return nil, fmt.Errorf("secrets: get %s: %w", name, err)
	}

	switch {
	case out.SecretString != nil && *out.SecretString != "":
		return []byte(*out.SecretString), nil
	case len(out.SecretBinary) > 0:
		return out.SecretBinary, nil
	}
	return nil, fmt.Errorf("%w: %s has no value", ErrSecretNotFound, name)
}

var _ Store = (*SecretsManagerStore)(nil)
