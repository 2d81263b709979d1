package config_test

import (
	"context"
	"testing"

	"github.com/rushteam/divkit/config"
	_ "github.com/rushteam/divkit/config/builders"
	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pipeline"
	"github.com/rushteam/divkit/pkg/utils"
)

const pipelineYAML = `
pipeline:
  name: diversity-demo
  nodes:
    - type: filter
      config:
        filters:
          - type: blacklist
            item_ids: ["banned"]
    - type: rerank.category_dedup
      config:
        label_key: category
    - type: rerank.topn
      config:
        n: 2
`

func TestBuildPipelineFromYAML(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(pipelineYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if cfg.Pipeline.Name != "diversity-demo" {
		t.Fatalf("name = %s", cfg.Pipeline.Name)
	}

	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig: %v", err)
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if len(p.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(p.Nodes))
	}

	items := []*core.Item{
		core.NewItem("banned"),
		core.NewItem("a"),
		core.NewItem("b"),
		core.NewItem("c"),
		core.NewItem("d"),
	}
	items[1].PutLabel("category", utils.Label{Value: "drama", Source: "metadata"})
	items[2].PutLabel("category", utils.Label{Value: "drama", Source: "metadata"})
	items[3].PutLabel("category", utils.Label{Value: "comedy", Source: "metadata"})

	out, err := p.Run(context.Background(), &core.RecommendContext{UserID: "u0"}, items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 黑名单过滤 banned，类别去重掉 b，topn 截到 2 -> [a, c]
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		ids := make([]string, len(out))
		for i, it := range out {
			ids[i] = it.ID
		}
		t.Fatalf("got %v, want [a c]", ids)
	}
}

func TestValidatePipelineConfig_UnknownType(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: bad
  nodes:
    - type: rank.unknown
`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if err := config.ValidatePipelineConfig(cfg); err == nil {
		t.Fatal("expected error for unknown node type")
	}
}
