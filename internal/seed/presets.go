package seed

import (
	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/scoring"
)

// PresetFor returns the curated evaluation for a model name, if one
// exists. Lookup is by normalized name.
func PresetFor(name string) (evaluation.Seed, bool) {
	s, ok := presets[evaluation.NormalizeName(name)]
	return s, ok
}

// PresetCount reports how many curated evaluations are available.
func PresetCount() int {
	return len(presets)
}

// Presets returns all curated evaluations.
func Presets() []evaluation.Seed {
	out := make([]evaluation.Seed, 0, len(presets))
	for _, s := range presets {
		out = append(out, s)
	}
	return out
}

// preset builds a Seed from the criteria with evidence and the criteria
// where evidence is absent. Any criterion in neither map stays unchecked
// without an evidence entry.
func preset(name, url, notes string, evidence, missing map[string]string) evaluation.Seed {
	scores := scoring.Scores{}
	combined := make(map[string]string, len(evidence)+len(missing))

	for _, dim := range scoring.Dimensions {
		row := map[string]bool{}
		for _, criterion := range scoring.Criteria[dim] {
			if ev, ok := evidence[criterion]; ok {
				row[criterion] = true
				combined[criterion] = ev
			} else {
				row[criterion] = false
				if note, ok := missing[criterion]; ok {
					combined[criterion] = note
				}
			}
		}
		scores[dim] = row
	}

	return evaluation.Seed{
		Name:     name,
		URL:      url,
		Scores:   scores,
		Evidence: combined,
		Notes:    notes,
	}
}

var presets = map[string]evaluation.Seed{}

func register(s evaluation.Seed) {
	presets[evaluation.NormalizeName(s.Name)] = s
}

func init() {
	register(preset(
		"Mistral-7B",
		"https://github.com/mistralai/mistral-src",
		"Strong on accessibility and execution, limited transparency on training process",
		map[string]string{
			"license":      "https://github.com/mistralai/mistral-src/blob/main/LICENSE",
			"weights":      "https://huggingface.co/mistralai/Mistral-7B-v0.1",
			"inference":    "https://github.com/mistralai/mistral-src",
			"community":    "https://github.com/mistralai/mistral-finetune",
			"modelcard":    "https://huggingface.co/mistralai/Mistral-7B-v0.1",
			"architecture": "https://arxiv.org/abs/2310.06825",
			"runnable":     "https://github.com/mistralai/mistral-inference",
			"finetune":     "https://github.com/mistralai/mistral-finetune",
		},
		map[string]string{
			"training":    "No evidence - training code not public",
			"datasets":    "No evidence - datasets not disclosed",
			"hardware":    "No evidence - hardware specs not disclosed",
			"pipeline":    "No evidence - training pipeline not available",
			"checkpoints": "No evidence - training checkpoints not shared",
			"cost":        "No evidence - training cost not disclosed",
			"provenance":  "No evidence - dataset sources not detailed",
		},
	))

	register(preset(
		"LLaMA 2",
		"https://github.com/facebookresearch/llama",
		"Well-documented architecture and hardware requirements, but training code remains closed",
		map[string]string{
			"license":      "https://ai.meta.com/llama/license/",
			"weights":      "https://huggingface.co/meta-llama",
			"inference":    "https://github.com/facebookresearch/llama",
			"hardware":     "https://arxiv.org/abs/2307.09288",
			"cost":         "https://arxiv.org/abs/2307.09288",
			"community":    "https://github.com/facebookresearch/llama-recipes",
			"modelcard":    "https://github.com/facebookresearch/llama/blob/main/MODEL_CARD.md",
			"architecture": "https://arxiv.org/abs/2307.09288",
			"provenance":   "https://arxiv.org/abs/2307.09288",
			"runnable":     "https://github.com/facebookresearch/llama",
			"finetune":     "https://github.com/facebookresearch/llama-recipes",
		},
		map[string]string{
			"training":    "No evidence - training code not released",
			"datasets":    "No evidence - proprietary training data",
			"pipeline":    "No evidence - full pipeline not available",
			"checkpoints": "No evidence - intermediate checkpoints not shared",
		},
	))

	register(preset(
		"Falcon",
		"https://huggingface.co/tiiuae",
		"Good transparency on datasets and architecture, training process partially disclosed",
		map[string]string{
			"license":      "https://huggingface.co/tiiuae/falcon-40b#license",
			"weights":      "https://huggingface.co/tiiuae/falcon-40b",
			"inference":    "https://huggingface.co/tiiuae/falcon-40b#how-to-get-started",
			"datasets":     "https://huggingface.co/datasets/tiiuae/falcon-refinedweb",
			"hardware":     "https://huggingface.co/tiiuae/falcon-40b#training-details",
			"cost":         "https://huggingface.co/tiiuae/falcon-40b#training-details",
			"modelcard":    "https://huggingface.co/tiiuae/falcon-40b",
			"architecture": "https://huggingface.co/tiiuae/falcon-40b#model-architecture",
			"provenance":   "https://huggingface.co/datasets/tiiuae/falcon-refinedweb",
			"runnable":     "https://huggingface.co/tiiuae/falcon-40b#how-to-get-started",
			"finetune":     "https://huggingface.co/blog/falcon",
		},
		map[string]string{
			"training":    "No evidence - training code not public",
			"pipeline":    "No evidence - full pipeline not disclosed",
			"checkpoints": "No evidence - training checkpoints not available",
			"community":   "No evidence - no verified reproductions",
		},
	))

	register(preset(
		"MPT",
		"https://github.com/mosaicml/llm-foundry",
		"Excellent transparency with training scripts and detailed documentation",
		map[string]string{
			"license":      "https://github.com/mosaicml/llm-foundry/blob/main/LICENSE",
			"weights":      "https://huggingface.co/mosaicml/mpt-30b",
			"inference":    "https://github.com/mosaicml/llm-foundry",
			"training":     "https://github.com/mosaicml/llm-foundry/tree/main/scripts",
			"datasets":     "https://www.mosaicml.com/blog/mpt-30b",
			"hardware":     "https://www.mosaicml.com/blog/mpt-30b",
			"pipeline":     "https://github.com/mosaicml/llm-foundry/tree/main/scripts/train",
			"cost":         "https://www.mosaicml.com/blog/mpt-30b",
			"community":    "https://github.com/mosaicml/llm-foundry/issues",
			"modelcard":    "https://huggingface.co/mosaicml/mpt-30b",
			"architecture": "https://arxiv.org/abs/2305.13169",
			"provenance":   "https://www.mosaicml.com/blog/mpt-30b",
			"runnable":     "https://github.com/mosaicml/llm-foundry#quickstart",
			"finetune":     "https://github.com/mosaicml/llm-foundry/tree/main/scripts/train",
		},
		map[string]string{
			"checkpoints": "No evidence - intermediate checkpoints not shared",
		},
	))

	register(preset(
		"Pythia",
		"https://github.com/EleutherAI/pythia",
		"Exemplary openness with full training pipeline, checkpoints, and detailed documentation",
		map[string]string{
			"license":      "https://github.com/EleutherAI/pythia/blob/main/LICENSE",
			"weights":      "https://huggingface.co/EleutherAI/pythia-12b",
			"inference":    "https://github.com/EleutherAI/pythia",
			"training":     "https://github.com/EleutherAI/gpt-neox",
			"datasets":     "https://pile.eleuther.ai/",
			"hardware":     "https://arxiv.org/abs/2304.01373",
			"pipeline":     "https://github.com/EleutherAI/gpt-neox",
			"checkpoints":  "https://huggingface.co/EleutherAI/pythia-12b-deduped",
			"cost":         "https://arxiv.org/abs/2304.01373",
			"community":    "https://github.com/EleutherAI/pythia/issues",
			"modelcard":    "https://huggingface.co/EleutherAI/pythia-12b",
			"architecture": "https://arxiv.org/abs/2304.01373",
			"provenance":   "https://arxiv.org/abs/2304.01373",
			"runnable":     "https://github.com/EleutherAI/pythia#quickstart",
			"finetune":     "https://github.com/EleutherAI/gpt-neox",
		},
		nil,
	))

	register(preset(
		"OPT",
		"https://github.com/facebookresearch/metaseq",
		"Comprehensive openness including training logs and detailed technical chronicles",
		map[string]string{
			"license":      "https://github.com/facebookresearch/metaseq/blob/main/LICENSE",
			"weights":      "https://huggingface.co/facebook/opt-175b",
			"inference":    "https://github.com/facebookresearch/metaseq",
			"training":     "https://github.com/facebookresearch/metaseq/tree/main/projects/OPT",
			"datasets":     "https://arxiv.org/abs/2205.01068",
			"hardware":     "https://arxiv.org/abs/2205.01068",
			"pipeline":     "https://github.com/facebookresearch/metaseq/tree/main/projects/OPT",
			"checkpoints":  "https://github.com/facebookresearch/metaseq/blob/main/projects/OPT/chronicles/README.md",
			"cost":         "https://arxiv.org/abs/2205.01068",
			"community":    "https://github.com/facebookresearch/metaseq/issues",
			"modelcard":    "https://huggingface.co/facebook/opt-175b",
			"architecture": "https://arxiv.org/abs/2205.01068",
			"provenance":   "https://arxiv.org/abs/2205.01068",
			"runnable":     "https://github.com/facebookresearch/metaseq#getting-started",
			"finetune":     "https://github.com/facebookresearch/metaseq/tree/main/projects/OPT",
		},
		nil,
	))

	register(preset(
		"BLOOM",
		"https://huggingface.co/bigscience/bloom",
		"Exceptional collaborative effort with complete transparency across all dimensions",
		map[string]string{
			"license":      "https://huggingface.co/spaces/bigscience/license",
			"weights":      "https://huggingface.co/bigscience/bloom",
			"inference":    "https://github.com/huggingface/transformers-bloom-inference",
			"training":     "https://github.com/bigscience-workshop/Megatron-DeepSpeed",
			"datasets":     "https://huggingface.co/datasets/bigscience/roots",
			"hardware":     "https://arxiv.org/abs/2211.05100",
			"pipeline":     "https://github.com/bigscience-workshop/Megatron-DeepSpeed",
			"checkpoints":  "https://huggingface.co/bigscience/bloom/tree/main",
			"cost":         "https://arxiv.org/abs/2211.05100",
			"community":    "https://github.com/bigscience-workshop",
			"modelcard":    "https://huggingface.co/bigscience/bloom",
			"architecture": "https://arxiv.org/abs/2211.05100",
			"provenance":   "https://huggingface.co/datasets/bigscience/roots",
			"runnable":     "https://huggingface.co/docs/transformers/model_doc/bloom",
			"finetune":     "https://github.com/huggingface/transformers/tree/main/examples/pytorch",
		},
		nil,
	))

	register(preset(
		"GPT-J",
		"https://github.com/kingoflolz/mesh-transformer-jax",
		"Strong openness with JAX/TPU implementation details and training methodology",
		map[string]string{
			"license":      "https://github.com/kingoflolz/mesh-transformer-jax/blob/master/LICENSE",
			"weights":      "https://huggingface.co/EleutherAI/gpt-j-6b",
			"inference":    "https://github.com/kingoflolz/mesh-transformer-jax",
			"training":     "https://github.com/kingoflolz/mesh-transformer-jax",
			"datasets":     "https://pile.eleuther.ai/",
			"hardware":     "https://arankomatsuzaki.wordpress.com/2021/06/04/gpt-j/",
			"pipeline":     "https://github.com/kingoflolz/mesh-transformer-jax/blob/master/howto_finetune.md",
			"cost":         "https://arankomatsuzaki.wordpress.com/2021/06/04/gpt-j/",
			"community":    "https://github.com/kingoflolz/mesh-transformer-jax/issues",
			"modelcard":    "https://huggingface.co/EleutherAI/gpt-j-6b",
			"architecture": "https://github.com/kingoflolz/mesh-transformer-jax/blob/master/mesh_transformer/layers.py",
			"provenance":   "https://pile.eleuther.ai/",
			"runnable":     "https://huggingface.co/EleutherAI/gpt-j-6b#how-to-use",
			"finetune":     "https://github.com/kingoflolz/mesh-transformer-jax/blob/master/howto_finetune.md",
		},
		map[string]string{
			"checkpoints": "No evidence - intermediate checkpoints not available",
		},
	))

	register(preset(
		"StableLM",
		"https://github.com/Stability-AI/StableLM",
		"Good model accessibility but limited training transparency",
		map[string]string{
			"license":      "https://github.com/Stability-AI/StableLM/blob/main/LICENSE",
			"weights":      "https://huggingface.co/stabilityai/stablelm-3b-4e1t",
			"inference":    "https://github.com/Stability-AI/StableLM",
			"datasets":     "https://huggingface.co/datasets/stabilityai/stablecode-instruct-alpha-3b",
			"community":    "https://github.com/Stability-AI/StableLM/issues",
			"modelcard":    "https://huggingface.co/stabilityai/stablelm-3b-4e1t",
			"architecture": "https://github.com/Stability-AI/StableLM#model-details",
			"provenance":   "https://huggingface.co/datasets/stabilityai",
			"runnable":     "https://github.com/Stability-AI/StableLM#usage",
			"finetune":     "https://huggingface.co/stabilityai/stablelm-tuned-alpha-7b",
		},
		map[string]string{
			"training":    "No evidence - training code not released",
			"hardware":    "No evidence - hardware specs not detailed",
			"pipeline":    "No evidence - training pipeline not available",
			"checkpoints": "No evidence - training checkpoints not shared",
			"cost":        "No evidence - training cost not disclosed",
		},
	))

	register(preset(
		"Vicuna",
		"https://github.com/lm-sys/FastChat",
		"Strong fine-tuning framework with good documentation and community support",
		map[string]string{
			"license":      "https://github.com/lm-sys/FastChat/blob/main/LICENSE",
			"weights":      "https://huggingface.co/lmsys/vicuna-13b-v1.5",
			"inference":    "https://github.com/lm-sys/FastChat",
			"training":     "https://github.com/lm-sys/FastChat/blob/main/fastchat/train/train.py",
			"datasets":     "https://huggingface.co/datasets/lmsys/chatbot_arena_conversations",
			"hardware":     "https://github.com/lm-sys/FastChat#fine-tuning",
			"pipeline":     "https://github.com/lm-sys/FastChat/tree/main/fastchat/train",
			"cost":         "https://lmsys.org/blog/2023-03-30-vicuna/",
			"community":    "https://github.com/lm-sys/FastChat/issues",
			"modelcard":    "https://huggingface.co/lmsys/vicuna-13b-v1.5",
			"architecture": "https://lmsys.org/blog/2023-03-30-vicuna/",
			"provenance":   "https://huggingface.co/datasets/lmsys/chatbot_arena_conversations",
			"runnable":     "https://github.com/lm-sys/FastChat#serving-with-web-gui",
			"finetune":     "https://github.com/lm-sys/FastChat/blob/main/docs/training.md",
		},
		map[string]string{
			"checkpoints": "No evidence - intermediate checkpoints not shared",
		},
	))

	register(preset(
		"Meta Llama 3.3 (70B)",
		"https://huggingface.co/meta-llama/Llama-3.3-70B",
		"Latest Llama 3.3 release with improved capabilities",
		map[string]string{
			"license":      "https://ai.meta.com/llama/license/",
			"weights":      "https://huggingface.co/meta-llama/Llama-3.3-70B",
			"inference":    "https://github.com/meta-llama/llama3",
			"training":     "https://ai.meta.com/research/publications/llama-3/",
			"datasets":     "https://ai.meta.com/llama3/training-data/",
			"hardware":     "https://ai.meta.com/llama3/specs/",
			"pipeline":     "https://github.com/meta-llama/llama3",
			"checkpoints":  "https://huggingface.co/meta-llama/Llama-3.3-70B",
			"community":    "https://github.com/meta-llama/llama-recipes",
			"modelcard":    "https://huggingface.co/meta-llama/Llama-3.3-70B",
			"architecture": "https://ai.meta.com/research/publications/",
			"provenance":   "https://ai.meta.com/llama3/",
			"runnable":     "https://github.com/meta-llama/llama3",
			"finetune":     "https://github.com/meta-llama/llama-recipes",
		},
		nil,
	))

	register(preset(
		"Mistral Large 2",
		"https://huggingface.co/mistralai/Mistral-Large-Instruct-2407",
		"Large-scale Mistral model with competitive performance",
		map[string]string{
			"license":      "https://mistral.ai/technology/#models",
			"weights":      "https://huggingface.co/mistralai/Mistral-Large-Instruct-2407",
			"inference":    "https://github.com/mistralai/mistral-inference",
			"checkpoints":  "https://huggingface.co/mistralai/Mistral-Large-Instruct-2407",
			"community":    "https://github.com/mistralai",
			"modelcard":    "https://huggingface.co/mistralai/Mistral-Large-Instruct-2407",
			"architecture": "https://mistral.ai/technology/",
			"runnable":     "https://github.com/mistralai/mistral-inference",
		},
		nil,
	))
}
