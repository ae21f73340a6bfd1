// internal/params/resolver.go
// 通知設定解析 - 由 SSM Parameter Store 或環境變數取得

package params

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"pathway-notify/internal/config"
	"pathway-notify/internal/models"
)

// Resolver 通知設定來源
type Resolver interface {
	Resolve(ctx context.Context) (*models.NotifyConfig, error)
}

// SSMResolver 由 SSM Parameter Store 路徑取得設定
// 參數名稱去除前綴後以 "/" 分層，例如 /pathway-notify/sendgrid/from
type SSMResolver struct {
	client ssm.GetParametersByPathAPIClient
	path   string
}

// NewSSMResolver 建立 SSM 設定來源
func NewSSMResolver(client ssm.GetParametersByPathAPIClient, path string) *SSMResolver {
	return &SSMResolver{
		client: client,
		path:   "/" + strings.Trim(path, "/"),
	}
}

// Resolve 讀取路徑下所有參數 (含解密) 並組成設定
func (r *SSMResolver) Resolve(ctx context.Context) (*models.NotifyConfig, error) {
	tree := map[string]any{}

	paginator := ssm.NewGetParametersByPathPaginator(r.client, &ssm.GetParametersByPathInput{
		Path:           aws.String(r.path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get parameters under %s: %w", r.path, err)
		}
		for _, p := range page.Parameters {
			name := strings.TrimPrefix(aws.ToString(p.Name), r.path)
			insert(tree, strings.Split(strings.Trim(name, "/"), "/"), aws.ToString(p.Value))
		}
	}

	return decode(tree)
}

// insert 將參數值放入巢狀 map
func insert(tree map[string]any, keys []string, value string) {
	if len(keys) == 0 || keys[0] == "" {
		return
	}
	if len(keys) == 1 {
		tree[keys[0]] = value
		return
	}
	child, ok := tree[keys[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		tree[keys[0]] = child
	}
	insert(child, keys[1:], value)
}

func decode(tree map[string]any) (*models.NotifyConfig, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	var cfg models.NotifyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return &cfg, nil
}

// EnvResolver 由程序設定 (環境變數) 取得設定，供本機執行使用
type EnvResolver struct {
	cfg *config.Config
}

// NewEnvResolver 建立環境變數設定來源
func NewEnvResolver(cfg *config.Config) *EnvResolver {
	return &EnvResolver{cfg: cfg}
}

// Resolve 回傳設定
func (r *EnvResolver) Resolve(ctx context.Context) (*models.NotifyConfig, error) {
	return &models.NotifyConfig{
		SendGrid: models.SendGridConfig{
			APIKey: r.cfg.SendGridAPIKey,
			From:   r.cfg.SendGridFrom,
		},
		DryRun: r.cfg.DryRun,
	}, nil
}

// StaticResolver 回傳固定設定 (測試與 CLI 覆寫用)
type StaticResolver struct {
	Config models.NotifyConfig
}

// Resolve 回傳設定副本
func (r StaticResolver) Resolve(ctx context.Context) (*models.NotifyConfig, error) {
	cfg := r.Config
	return &cfg, nil
}
