package mirror

import (
	"context"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitclient "github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/vost-dev/vost/hash"
)

// authFor maps the opaque credential strings of an Options onto the
// transport auth scheme the URL calls for: HTTP basic auth for http(s),
// password auth for ssh. Anonymous (nil) when no username is given, and
// for schemes (git://, file://) that carry no credentials at all.
func authFor(url string, opts Options) transport.AuthMethod {
	if opts.Username == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return &githttp.BasicAuth{Username: opts.Username, Password: opts.Password}
	case strings.HasPrefix(url, "ssh://"):
		return &gitssh.Password{User: opts.Username, Password: opts.Password}
	default:
		return nil
	}
}

// transportClient is the network-facing half of a mirror operation: list
// remote refs, fetch the objects behind a set of wanted commits, and push
// a set of ref updates plus the objects they need. Backed by
// go-git/go-git/v5's smart-protocol client registry, which already
// implements the http(s)/ssh/git wire protocols needed here.
type transportClient struct {
	ep   *transport.Endpoint
	auth transport.AuthMethod
}

func newTransportClient(rawURL string, auth transport.AuthMethod) (*transportClient, error) {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return nil, err
	}
	return &transportClient{ep: ep, auth: auth}, nil
}

// lsRefs returns every ref the remote advertises, as plain (name, hash)
// pairs including HEAD and peeled tags; Diff's exclusion runs on this
// result afterwards, not here.
func (t *transportClient) lsRefs(ctx context.Context) (map[string]hash.Hash, error) {
	cli, err := gitclient.NewClient(t.ep)
	if err != nil {
		return nil, err
	}
	sess, err := cli.NewUploadPackSession(t.ep, t.auth)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	ar, err := sess.AdvertisedReferences()
	if err != nil {
		return nil, err
	}

	out := make(map[string]hash.Hash, len(ar.References))
	for name, h := range ar.References {
		out[name] = hash.FromHex(h.String())
	}
	if ar.Head != nil {
		out["HEAD"] = hash.FromHex(ar.Head.String())
	}
	for name, h := range ar.Peeled {
		out[name+"^{}"] = hash.FromHex(h.String())
	}
	return out, nil
}

// fetchPack requests a packfile covering wants (and anything reachable
// from them that haves does not already cover) from the remote.
func (t *transportClient) fetchPack(ctx context.Context, wants, haves []hash.Hash) (io.ReadCloser, error) {
	cli, err := gitclient.NewClient(t.ep)
	if err != nil {
		return nil, err
	}
	sess, err := cli.NewUploadPackSession(t.ep, t.auth)
	if err != nil {
		return nil, err
	}

	req := packp.NewUploadPackRequest()
	for _, w := range wants {
		req.Wants = append(req.Wants, plumbing.NewHash(w.String()))
	}
	for _, h := range haves {
		req.Haves = append(req.Haves, plumbing.NewHash(h.String()))
	}

	resp, err := sess.UploadPack(ctx, req)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	return packpReadCloser{resp: resp, sess: sess}, nil
}

type packpReadCloser struct {
	resp *packp.UploadPackResponse
	sess transport.UploadPackSession
}

func (p packpReadCloser) Read(b []byte) (int, error) { return p.resp.Read(b) }
func (p packpReadCloser) Close() error {
	_ = p.resp.Close()
	return p.sess.Close()
}

// pushPack sends a set of ref updates (oldTarget nil means "ref did not
// exist", newTarget nil means "delete") plus a packfile of the objects
// those updates need.
func (t *transportClient) pushPack(ctx context.Context, updates []RefChange, pack io.ReadCloser) error {
	cli, err := gitclient.NewClient(t.ep)
	if err != nil {
		return err
	}
	sess, err := cli.NewReceivePackSession(t.ep, t.auth)
	if err != nil {
		return err
	}
	defer sess.Close()

	req := packp.NewReferenceUpdateRequest()
	for _, u := range updates {
		cmd := &packp.Command{Name: plumbing.ReferenceName(u.Ref)}
		if u.OldTarget != nil {
			cmd.Old = plumbing.NewHash(u.OldTarget.String())
		}
		if u.NewTarget != nil {
			cmd.New = plumbing.NewHash(u.NewTarget.String())
		} else {
			cmd.New = plumbing.ZeroHash
		}
		req.Commands = append(req.Commands, cmd)
	}
	req.Packfile = pack

	report, err := sess.ReceivePack(ctx, req)
	if err != nil {
		return err
	}
	if report != nil {
		return report.Error()
	}
	return nil
}
