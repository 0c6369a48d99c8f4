package security

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	// SecretKey HS* 算法的对称密钥
	SecretKey string `mapstructure:"secret_key"`

	// PublicKeyFile / PrivateKeyFile RS* 与 ES* 算法的 PEM 文件
	PublicKeyFile  string `mapstructure:"public_key_file"`
	PrivateKeyFile string `mapstructure:"private_key_file"`

	Algorithm   string        `mapstructure:"algorithm" validate:"oneof=HS256 HS384 HS512 RS256 RS384 RS512 ES256 ES384 ES512"`
	ExpiresIn   time.Duration `mapstructure:"expires_in"`
	Issuer      string        `mapstructure:"issuer"`
	TokenPrefix string        `mapstructure:"token_prefix"`
	HeaderName  string        `mapstructure:"header_name"`
}

func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Algorithm:   "HS256",
		ExpiresIn:   24 * time.Hour,
		TokenPrefix: "Bearer ",
		HeaderName:  "Authorization",
	}
}

// Claims 标准字段加自定义载荷
type Claims struct {
	jwt.RegisteredClaims
	Payload map[string]any `json:"payload,omitempty"`
}

// Get 读取载荷，支持 "a.b" 形式的嵌套 key
func (c *Claims) Get(key string) any {
	var current any = c.Payload
	for _, k := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[k]
	}
	return current
}

// UnmarshalKey 将载荷中的某个 key 解码到 v
// 使用弱类型解码，JSON 中的数字和字符串都能解码为 int64
func (c *Claims) UnmarshalKey(key string, v any) error {
	val := c.Get(key)
	if val == nil {
		return fmt.Errorf("%w: %s", ErrClaimMissing, key)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}
	return dec.Decode(val)
}

// JWTManager 签发与校验 Token
type JWTManager struct {
	config    *JWTConfig
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

// NewJWTManager 创建管理器
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	c, err := config.MergeConfig(DefaultJWTConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(c); err != nil {
		return nil, err
	}

	m := &JWTManager{config: c, method: jwt.GetSigningMethod(c.Algorithm)}
	if err := m.loadKeys(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *JWTManager) loadKeys() error {
	alg := m.config.Algorithm
	if strings.HasPrefix(alg, "HS") {
		if m.config.SecretKey == "" {
			return ErrSecretKeyEmpty
		}
		m.signKey = []byte(m.config.SecretKey)
		m.verifyKey = m.signKey
		return nil
	}

	if m.config.PublicKeyFile != "" {
		data, err := os.ReadFile(m.config.PublicKeyFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPublicKeyLoad, err)
		}
		if strings.HasPrefix(alg, "RS") {
			m.verifyKey, err = jwt.ParseRSAPublicKeyFromPEM(data)
		} else {
			m.verifyKey, err = jwt.ParseECPublicKeyFromPEM(data)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPublicKeyLoad, err)
		}
	}

	if m.config.PrivateKeyFile != "" {
		data, err := os.ReadFile(m.config.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPrivateKeyLoad, err)
		}
		if strings.HasPrefix(alg, "RS") {
			m.signKey, err = jwt.ParseRSAPrivateKeyFromPEM(data)
		} else {
			m.signKey, err = jwt.ParseECPrivateKeyFromPEM(data)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPrivateKeyLoad, err)
		}
	}
	return nil
}

// Config 返回合并后的配置
func (m *JWTManager) Config() *JWTConfig {
	return m.config
}

// GenerateToken 签发 Token
func (m *JWTManager) GenerateToken(payload map[string]any) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.ExpiresIn)),
		},
		Payload: payload,
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.signKey)
}

// ValidateToken 校验 Token，允许带前缀
func (m *JWTManager) ValidateToken(token string) (*Claims, error) {
	if m.config.TokenPrefix != "" {
		token = strings.TrimPrefix(token, m.config.TokenPrefix)
	}
	if token == "" {
		return nil, ErrTokenMissing
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != m.config.Algorithm {
			return nil, ErrAlgorithmMismatch
		}
		return m.verifyKey, nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotValidYet
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, ErrAlgorithmMismatch):
		return ErrAlgorithmMismatch
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
