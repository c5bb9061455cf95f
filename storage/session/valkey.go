package sessionstore

import (
	"context"
	"crypto/tls"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/valkey-io/valkey-go"

	"github.com/ajolotes/ajolotes/core/session"
)

type valkeyStore struct {
	client valkey.Client
}

var _ session.Store = (*valkeyStore)(nil)

// NewValkeyClient builds a client from a valkey://[user:password@]host:port URI.
// The valkeys and rediss schemes enable TLS.
func NewValkeyClient(uri string) (valkey.Client, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if u.Host == "" { // bare host:port
		u = &url.URL{Scheme: "valkey", Host: uri}
	}

	username := ""
	password := ""
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}

	options := valkey.ClientOption{
		InitAddress:  []string{u.Host},
		Username:     username,
		Password:     password,
		DisableCache: true,
	}
	if u.Scheme == "valkeys" || u.Scheme == "rediss" {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return valkey.NewClient(options)
}

// NewValkeyStore connects to uri and pings the server.
func NewValkeyStore(ctx context.Context, uri string) (*valkeyStore, error) {
	client, err := NewValkeyClient(uri)
	if err != nil {
		return nil, errors.Wrap(err, "valkey client")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err = client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "valkey ping")
	}
	return &valkeyStore{client: client}, nil
}

func (st *valkeyStore) Name() string { return "valkey" }

func (st *valkeyStore) Load(ctx context.Context, id string) (*session.Session, error) {
	if !session.ValidID(id) {
		return nil, session.ErrNotFound
	}
	data, err := st.client.Do(ctx, st.client.B().Get().Key(key(id)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrap(err, "valkey get")
	}
	return session.Decode(data)
}

func (st *valkeyStore) Save(ctx context.Context, s *session.Session, ttl time.Duration) error {
	data, err := session.Encode(s)
	if err != nil {
		return err
	}
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := st.client.B().Set().Key(key(s.ID())).Value(valkey.BinaryString(data)).ExSeconds(seconds).Build()
	return errors.Wrap(st.client.Do(ctx, cmd).Error(), "valkey set")
}

func (st *valkeyStore) Delete(ctx context.Context, id string) error {
	return errors.Wrap(st.client.Do(ctx, st.client.B().Del().Key(key(id)).Build()).Error(), "valkey del")
}

func (st *valkeyStore) Close() error {
	st.client.Close()
	return nil
}
