package bootstrap

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	ringconfig "ChordRing/internal/config"
)

// Route53Bootstrap discovers and advertises ring members as SRV records in a
// Route53 hosted zone, letting nodes find each other without a fixed peer
// list (e.g. behind an autoscaling group).
type Route53Bootstrap struct {
	client       *route53.Client
	hostedZoneID string
	domainSuffix string
	ttl          int64
}

// NewRoute53Bootstrap builds a Route53Bootstrap from the default AWS
// credential chain.
func NewRoute53Bootstrap(cfg ringconfig.Route53Config) (*Route53Bootstrap, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Route53Bootstrap{
		client:       client,
		hostedZoneID: cfg.HostedZoneID,
		domainSuffix: strings.TrimSuffix(cfg.DomainSuffix, "."),
		ttl:          cfg.TTL,
	}, nil
}

func newClient(ctx context.Context) (*route53.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return route53.NewFromConfig(awsCfg), nil
}

// Discover queries the hosted zone for SRV records under domainSuffix and
// resolves each target to a dialable address.
func (r *Route53Bootstrap) Discover(ctx context.Context) ([]string, error) {
	var endpoints []string
	input := &route53.ListResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
	}
	paginator := route53.NewListResourceRecordSetsPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list records: %w", err)
		}
		for _, rrset := range page.ResourceRecordSets {
			if rrset.Type != types.RRTypeSrv {
				continue
			}
			if !strings.HasSuffix(strings.TrimSuffix(*rrset.Name, "."), r.domainSuffix) {
				continue
			}
			for _, rr := range rrset.ResourceRecords {
				var prio, weight, port int
				var target string
				if _, err := fmt.Sscanf(*rr.Value, "%d %d %d %s", &prio, &weight, &port, &target); err != nil {
					continue
				}
				target = strings.TrimSuffix(target, ".")

				ips, err := net.LookupHost(target)
				if err != nil {
					continue
				}
				for _, ip := range ips {
					endpoints = append(endpoints, fmt.Sprintf("%s:%d", ip, port))
				}
			}
		}
	}
	return endpoints, nil
}

// recordName derives the SRV record name from a node's dialable address, so
// that repeated Register calls for the same node upsert the same record.
func (r *Route53Bootstrap) recordName(selfAddr string) string {
	return fmt.Sprintf("%x.%s.", []byte(selfAddr), r.domainSuffix)
}

// Register upserts an SRV record advertising selfAddr.
func (r *Route53Bootstrap) Register(ctx context.Context, selfAddr string) error {
	host, port, err := net.SplitHostPort(selfAddr)
	if err != nil {
		return err
	}
	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(r.recordName(selfAddr)),
						Type: types.RRTypeSrv,
						TTL:  aws.Int64(r.ttl),
						ResourceRecords: []types.ResourceRecord{
							{
								// priority weight port target (priority and weight unused)
								Value: aws.String(fmt.Sprintf("0 0 %s %s.", port, host)),
							},
						},
					},
				},
			},
		},
	}
	_, err = r.client.ChangeResourceRecordSets(ctx, input)
	return err
}

// Deregister removes the SRV record created by Register for selfAddr.
func (r *Route53Bootstrap) Deregister(ctx context.Context, selfAddr string) error {
	host, port, err := net.SplitHostPort(selfAddr)
	if err != nil {
		return err
	}
	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(r.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionDelete,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(r.recordName(selfAddr)),
						Type: types.RRTypeSrv,
						TTL:  aws.Int64(r.ttl),
						ResourceRecords: []types.ResourceRecord{
							{
								Value: aws.String(fmt.Sprintf("0 0 %s %s.", port, host)),
							},
						},
					},
				},
			},
		},
	}
	_, err = r.client.ChangeResourceRecordSets(ctx, input)
	return err
}
