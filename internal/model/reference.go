package model

// Article is an entry of the embedded Code civil reference table.
type Article struct {
	ID        string `json:"article_id" yaml:"id"`
	Numero    string `json:"numero" yaml:"numero"`
	Titre     string `json:"titre" yaml:"titre"`
	Contenu   string `json:"contenu" yaml:"contenu"`
	Categorie string `json:"categorie" yaml:"categorie"`
}

// Template is a pre-written starting point for a conclusion.
type Template struct {
	ID                 string   `json:"template_id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Description        string   `json:"description" yaml:"description"`
	Type               string   `json:"type" yaml:"type"`
	Category           string   `json:"category" yaml:"category"`
	FaitsTemplate      string   `json:"faits_template" yaml:"faits_template"`
	DemandesTemplate   string   `json:"demandes_template" yaml:"demandes_template"`
	ArticlesPertinents []string `json:"articles_pertinents" yaml:"articles_pertinents"`
}
