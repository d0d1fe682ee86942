package tqsql

import (
	"context"
	"fmt"

	"github.com/mevdschee/tqsql/netio"
	"github.com/mevdschee/tqsql/netio/tlsopts"
	"github.com/mevdschee/tqsql/packet"
	"github.com/mevdschee/tqsql/protocol"
	"github.com/mevdschee/tqsql/protocol/auth"
	"github.com/mevdschee/tqsql/protocol/handshake"
	"github.com/mevdschee/tqsql/session"
	"github.com/mevdschee/tqsql/tqsqlmetrics"
)

// ConnectOption configures a single connection attempt. It carries only
// plain values: loading these from environment variables or a config file
// is the caller's concern, not this package's.
type ConnectOption struct {
	// Network is "tcp" or "unix".
	Network string
	// Address is a "host:port" pair for Network "tcp", or a socket path
	// for Network "unix".
	Address string

	Username string
	Password string
	// Database is optional; it is only sent if non-empty and the server
	// advertises CapabilityConnectWithDB.
	Database string

	TLS tlsopts.Options

	// Recorder receives instrumentation for this connection attempt. A nil
	// Recorder is replaced with tqsqlmetrics.NoOp.
	Recorder tqsqlmetrics.Recorder
}

func (o ConnectOption) networkOrDefault() string {
	if o.Network == "" {
		return "tcp"
	}
	return o.Network
}

// Conn is a live, authenticated connection to a MySQL/MariaDB-compatible
// server. It owns the packet sequence numbering for the command phase:
// each call that starts a new command (Ping, and any future command this
// package grows) resets the sequence counter to 0 before sending, per the
// protocol's command-phase framing rule.
type Conn struct {
	framed   *netio.Framed
	session  *session.Context
	recorder tqsqlmetrics.Recorder
	seq      uint8

	// handshakeReply is the final frame the server sent to conclude the
	// handshake (OK, ERR, or AuthSwitchRequest). Parsing it is outside this
	// module's scope; it is kept verbatim for a caller that wants to
	// inspect it with its own result-decoding layer.
	handshakeReply packet.Frame
}

// Session returns the connection's negotiated session context.
func (c *Conn) Session() *session.Context {
	return c.session
}

// HandshakeReply returns the raw frame the server sent to conclude the
// handshake, undecoded.
func (c *Conn) HandshakeReply() packet.Frame {
	return c.handshakeReply
}

// Connect dials opt.Address, performs the initial handshake, optionally
// upgrades to TLS in-band, authenticates, and returns a live Conn.
func Connect(ctx context.Context, opt ConnectOption) (*Conn, error) {
	recorder := opt.Recorder
	if recorder == nil {
		recorder = tqsqlmetrics.NoOp{}
	}

	stop := recorder.StartHandshake()
	conn, err := connect(ctx, opt, recorder)
	stop(err == nil)
	return conn, err
}

func connect(ctx context.Context, opt ConnectOption, recorder tqsqlmetrics.Recorder) (*Conn, error) {
	stream, err := netio.Dial(ctx, opt.networkOrDefault(), opt.Address)
	if err != nil {
		return nil, newConnErr(KindIO, err)
	}

	return connectOverStream(ctx, stream, opt, recorder)
}

// connectOverStream runs the handshake over an already-open stream. It is
// split out from connect so tests can drive the handshake over an
// in-memory nettest.Pipe stream instead of a real socket.
func connectOverStream(ctx context.Context, stream *netio.Stream, opt ConnectOption, recorder tqsqlmetrics.Recorder) (*Conn, error) {
	framed := netio.NewFramed(stream)

	greeting, err := framed.Recv(ctx)
	if err != nil {
		framed.Close()
		return nil, newConnErr(KindIO, err)
	}

	initial, err := handshake.DecodeInitial(greeting.Payload)
	if err != nil {
		framed.Close()
		return nil, newConnErr(KindInitialHandshake, err)
	}

	authType := initial.AuthType
	if !initial.HasAuthType {
		authType = auth.Native
	}

	sess := session.New(initial.ServerVersion, initial.ConnectionID, initial.ServerCapabilities,
		initial.StatusFlags, initial.DefaultCollation, initial.IsMariaDB, authType, initial.Seed)

	nextSeq := greeting.Seq + 1

	if opt.Database != "" && sess.HasServerCapability(protocol.CapabilityConnectWithDB) {
		sess.SetClientCapability(protocol.CapabilityConnectWithDB)
	}

	if opt.TLS.Mode != tlsopts.Disable {
		switch {
		case !sess.HasServerCapability(protocol.CapabilitySSL) && opt.TLS.Mode != tlsopts.Prefer:
			framed.Close()
			return nil, newConnErr(KindTLSCapability, ErrTLSCapability)
		case sess.HasServerCapability(protocol.CapabilitySSL):
			if err := upgradeTLS(ctx, framed, sess, opt.TLS, &nextSeq); err != nil {
				framed.Close()
				return nil, err
			}
			recorder.TLSUpgraded()
		}
	}

	authType = sess.AuthType()
	if !authType.Supported() {
		framed.Close()
		return nil, newConnErr(KindUnsupportedAuthPlugin, fmt.Errorf("%w: %s", ErrUnsupportedAuthPlugin, authType))
	}
	if authType.NeedsSSL() && !sess.HasClientCapability(protocol.CapabilitySSL) {
		framed.Close()
		return nil, newConnErr(KindPluginNeedsTLS, ErrPluginNeedsTLS)
	}

	authResponse, err := auth.Encrypt(authType, []byte(opt.Password), sess.Seed())
	if err != nil {
		framed.Close()
		return nil, newConnErr(KindAuthPlugin, err)
	}
	recorder.AuthPlugin(authType.Name())

	responseBody := handshake.EncodeResponse(handshake.ResponseParams{
		ClientCapabilities: sess.ClientCapabilities(),
		ServerCapabilities: sess.ServerCapabilities(),
		IsMariaDB:          sess.IsMariaDB(),
		MaxPacketSize:      sess.MaxPacketSize(),
		Collation:          sess.ClientCollation(),
		Username:           opt.Username,
		AuthResponse:       authResponse,
		Database:           opt.Database,
		AuthPluginName:     authType.Name(),
	})

	if err := framed.Send(ctx, packet.NewFrame(nextSeq, responseBody)); err != nil {
		framed.Close()
		return nil, newConnErr(KindIO, err)
	}

	reply, err := framed.Recv(ctx)
	if err != nil {
		framed.Close()
		return nil, newConnErr(KindIO, err)
	}

	return &Conn{
		framed:         framed,
		session:        sess,
		recorder:       recorder,
		handshakeReply: reply,
	}, nil
}

// upgradeTLS sends the SSL request packet, builds the TLS config, and
// upgrades framed's transport. *nextSeq is advanced past the SSL request
// packet the same way it would be past any other handshake-phase frame:
// sequence numbering runs continuously through the whole handshake and is
// never reset mid-handshake.
func upgradeTLS(ctx context.Context, framed *netio.Framed, sess *session.Context, opt tlsopts.Options, nextSeq *uint8) error {
	sess.SetClientCapability(protocol.CapabilitySSL)

	sslBody := handshake.EncodeSSLRequest(handshake.SSLRequestParams{
		ClientCapabilities: sess.ClientCapabilities(),
		IsMariaDB:          sess.IsMariaDB(),
		MaxPacketSize:      sess.MaxPacketSize(),
		Collation:          sess.ClientCollation(),
	})

	if err := framed.Send(ctx, packet.NewFrame(*nextSeq, sslBody)); err != nil {
		return newConnErr(KindIO, err)
	}
	*nextSeq++

	cfg, err := opt.Build()
	if err != nil {
		return newConnErr(KindTLS, err)
	}

	if _, err := framed.Upgrade(ctx, cfg); err != nil {
		return newConnErr(KindTLSUpgrade, err)
	}

	return nil
}

// Ping sends COM_PING and waits for the server's reply. COM_PING is a
// command-phase packet, so the sequence counter resets to 0 before it goes
// out, independently of whatever sequence number the handshake ended on.
func (c *Conn) Ping(ctx context.Context) error {
	c.seq = 0
	if err := c.framed.Send(ctx, packet.NewFrame(c.seq, handshake.EncodePing())); err != nil {
		return newConnErr(KindIO, err)
	}
	c.seq++

	if _, err := c.framed.Recv(ctx); err != nil {
		return newConnErr(KindIO, err)
	}
	return nil
}

// Close closes the underlying transport.
func (c *Conn) Close() error {
	return c.framed.Close()
}
